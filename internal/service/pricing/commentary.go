package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/KNICEX/trade-monitor/internal/service/llm"
	"github.com/KNICEX/trade-monitor/pkg/decimalx"
)

var _ Commentator = (*LLMCommentator)(nil)

// LLMCommentator 让大模型根据报价和情绪给出一段简短点评
type LLMCommentator struct {
	svc llm.Service
}

func NewLLMCommentator(svc llm.Service) *LLMCommentator {
	return &LLMCommentator{svc: svc}
}

func (c *LLMCommentator) Comment(ctx context.Context, quotes []Quote, sentiment *Sentiment) (string, error) {
	answer, err := c.svc.AskOnce(ctx, llm.Question{Content: buildPrompt(quotes, sentiment)})
	if err != nil {
		return "", fmt.Errorf("ask llm: %w", err)
	}
	return strings.TrimSpace(answer.Content), nil
}

func buildPrompt(quotes []Quote, sentiment *Sentiment) string {
	var sb strings.Builder
	sb.WriteString("You are a cautious crypto market analyst. Given the spot prices and 24h changes below, ")
	sb.WriteString("write at most three short sentences of plain-text commentary for a retail spot holder. ")
	sb.WriteString("Do not give leverage advice and do not use markdown.\n\n")
	for _, q := range quotes {
		sb.WriteString(fmt.Sprintf("%s: $%s (%s%%)\n", q.Symbol, q.Price.String(), decimalx.Fixed2(q.Change24h)))
	}
	if sentiment != nil {
		sb.WriteString(fmt.Sprintf("Fear & Greed Index: %d (%s)\n", sentiment.Value, sentiment.Classification))
	}
	return sb.String()
}
