package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cast"
)

const FearGreedURL = "https://api.alternative.me/fng/"

var _ SentimentSource = (*FearGreedSource)(nil)

// FearGreedSource 恐惧贪婪指数
type FearGreedSource struct {
	url string
	cli *http.Client
}

func NewFearGreedSource(url string, timeout time.Duration) *FearGreedSource {
	if url == "" {
		url = FearGreedURL
	}
	return &FearGreedSource{
		url: url,
		cli: &http.Client{Timeout: timeout},
	}
}

type fearGreedResp struct {
	Data []struct {
		Value          any    `json:"value"`
		Classification string `json:"value_classification"`
	} `json:"data"`
}

func (s *FearGreedSource) Sentiment(ctx context.Context) (Sentiment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Sentiment{}, err
	}
	resp, err := s.cli.Do(req)
	if err != nil {
		return Sentiment{}, fmt.Errorf("fear and greed request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Sentiment{}, fmt.Errorf("fear and greed returned status %d", resp.StatusCode)
	}

	var body fearGreedResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Sentiment{}, fmt.Errorf("decode fear and greed response: %w", err)
	}
	if len(body.Data) == 0 {
		return Sentiment{}, fmt.Errorf("fear and greed response has no data")
	}
	// 接口返回的 value 是字符串
	value, err := cast.ToIntE(body.Data[0].Value)
	if err != nil {
		return Sentiment{}, fmt.Errorf("parse fear and greed value: %w", err)
	}
	return Sentiment{
		Value:          value,
		Classification: body.Data[0].Classification,
	}, nil
}
