package gemini

import (
	"context"
	"strings"

	"github.com/KNICEX/trade-monitor/internal/service/llm"
	"github.com/google/generative-ai-go/genai"
)

const DefaultModel = "gemini-2.0-flash"

var _ llm.Service = (*Service)(nil)

type Service struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewService(client *genai.Client, opts ...Option) *Service {
	svc := &Service{
		client: client,
		model:  client.GenerativeModel(DefaultModel),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type Option func(service *Service)

// WithModel 切换模型, 需放在 WithTemperature 之前
func WithModel(name string) Option {
	return func(service *Service) {
		if name != "" {
			service.model = service.client.GenerativeModel(name)
		}
	}
}

func WithTemperature(temp float32) Option {
	return func(service *Service) {
		service.model.SetTemperature(temp)
	}
}

func (s *Service) AskOnce(ctx context.Context, q llm.Question) (llm.Answer, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(q.Content))
	if err != nil {
		return llm.Answer{}, err
	}
	ans := llm.Answer{
		Content: parseResponse(resp),
	}
	if resp.UsageMetadata != nil {
		ans.InputToken = int(resp.UsageMetadata.PromptTokenCount)
		ans.OutputToken = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return ans, nil
}

// parseResponse 只取第一个候选的文本部分, 遇到非文本内容返回空串
func parseResponse(resp *genai.GenerateContentResponse) string {
	var resStr strings.Builder
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for i, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		text, ok := part.(genai.Text)
		if !ok {
			return ""
		}
		if i > 0 {
			resStr.WriteString("\n")
		}
		resStr.WriteString(string(text))
	}
	return resStr.String()
}
