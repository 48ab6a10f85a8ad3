package monitor

import (
	"fmt"
	"strings"
	"text/template"
	"time"
)

// DefaultTemplate 秒级监控的消息格式
const DefaultTemplate = `⚡ **Trade alert** ({{ .Count }} new)

{{ join .Trades "\n" }}

💰 Total: {{ .Fields.totalValue }} USDT | Leverage: {{ .Fields.leverage }}`

type MessageData struct {
	Trades []string
	Fields map[string]string
	First  int // 第一笔新成交的下标
	Count  int
	Total  int
	Time   time.Time
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer(text string) (*Renderer, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultTemplate
	}
	tmpl, err := template.New("alert").
		Option("missingkey=zero").
		Funcs(template.FuncMap{
			"join": strings.Join,
			"default": func(def, v string) string {
				if v == "" {
					return def
				}
				return v
			},
			"add": func(a, b int) int { return a + b },
		}).
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse alert template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func MustNewRenderer(text string) *Renderer {
	r, err := NewRenderer(text)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(data MessageData) (string, error) {
	if data.Fields == nil {
		data.Fields = map[string]string{}
	}
	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render alert: %w", err)
	}
	return sb.String(), nil
}
