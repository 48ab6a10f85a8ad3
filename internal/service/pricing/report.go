package pricing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/KNICEX/trade-monitor/pkg/decimalx"
	"github.com/rs/zerolog"
)

// allocationSuggestion 固定的现货配置建议
var allocationSuggestion = []string{
	"1. Blue Chips (BTC/ETH): 60% - Core stability.",
	"2. Mid-Caps (SOL/BNB): 20% - Growth potential.",
	"3. Speculative/New Alts: 10% - High risk/reward.",
	"4. Cash/Stables: 10% - For buying dips.",
}

type Report struct {
	Quotes     []Quote
	Sentiment  *Sentiment
	Commentary string
}

func (r Report) Render(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("--- Crypto Price Summary ---\n")
	for _, q := range r.Quotes {
		arrow := "📉"
		if decimalx.IsRising(q.Change24h) {
			arrow = "📈"
		}
		sb.WriteString(fmt.Sprintf("%s: $%s (%s %s%%)\n",
			strings.ToUpper(q.ID), q.Price.String(), arrow, decimalx.Fixed2(q.Change24h)))
	}

	if r.Sentiment != nil {
		sb.WriteString("\n--- Market Sentiment ---\n")
		sb.WriteString(fmt.Sprintf("Fear & Greed Index: %d (%s)\n", r.Sentiment.Value, r.Sentiment.Classification))
	}

	if r.Commentary != "" {
		sb.WriteString("\n--- Commentary ---\n")
		sb.WriteString(r.Commentary)
		sb.WriteString("\n")
	}

	sb.WriteString("\n--- Spot Portfolio Suggestion (General) ---\n")
	for _, line := range allocationSuggestion {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Reporter 拉取报价并输出报告. 情绪和点评是可选的, 失败时只记录日志
type Reporter struct {
	source      Source
	sentiment   SentimentSource
	commentator Commentator
	log         zerolog.Logger
}

type ReporterOption func(r *Reporter)

func WithSentiment(s SentimentSource) ReporterOption {
	return func(r *Reporter) {
		r.sentiment = s
	}
}

func WithCommentator(c Commentator) ReporterOption {
	return func(r *Reporter) {
		r.commentator = c
	}
}

func WithLogger(l zerolog.Logger) ReporterOption {
	return func(r *Reporter) {
		r.log = l
	}
}

func NewReporter(source Source, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		source: source,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) Build(ctx context.Context, ids []string) (Report, error) {
	if len(ids) == 0 {
		ids = DefaultIDs
	}
	quotes, err := r.source.Quotes(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("fetch quotes from %s: %w", r.source.Name(), err)
	}
	report := Report{Quotes: quotes}

	if r.sentiment != nil {
		s, err := r.sentiment.Sentiment(ctx)
		if err != nil {
			r.log.Warn().Err(err).Msg("failed to fetch market sentiment")
		} else {
			report.Sentiment = &s
		}
	}

	if r.commentator != nil && len(quotes) > 0 {
		c, err := r.commentator.Comment(ctx, quotes, report.Sentiment)
		if err != nil {
			r.log.Warn().Err(err).Msg("failed to generate commentary")
		} else {
			report.Commentary = c
		}
	}
	return report, nil
}

// Run 生成并输出报告
func (r *Reporter) Run(ctx context.Context, ids []string, w io.Writer) error {
	report, err := r.Build(ctx, ids)
	if err != nil {
		return err
	}
	return report.Render(w)
}
