package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KNICEX/trade-monitor/pkg/decimalx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

var _ Source = (*CoinGeckoSource)(nil)

type CoinGeckoSource struct {
	baseURL string
	cli     *http.Client
}

func NewCoinGeckoSource(baseURL string, timeout time.Duration) *CoinGeckoSource {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	return &CoinGeckoSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		cli:     &http.Client{Timeout: timeout},
	}
}

func (s *CoinGeckoSource) Name() string {
	return "coingecko"
}

// Quotes 按 ids 的顺序返回, 响应中缺失的 id 跳过
func (s *CoinGeckoSource) Quotes(ctx context.Context, ids []string) ([]Quote, error) {
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coingecko request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var data map[string]map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode coingecko response: %w", err)
	}

	var parseErr error
	quotes := lo.FilterMap(ids, func(id string, _ int) (Quote, bool) {
		info, ok := data[id]
		if !ok {
			return Quote{}, false
		}
		price, err := decimalx.FromAny(info["usd"])
		if err != nil {
			parseErr = fmt.Errorf("parse %s price: %w", id, err)
			return Quote{}, false
		}
		change := decimal.Zero
		if raw, ok := info["usd_24h_change"]; ok && raw != nil {
			if change, err = decimalx.FromAny(raw); err != nil {
				parseErr = fmt.Errorf("parse %s change: %w", id, err)
				return Quote{}, false
			}
		}
		return Quote{
			ID:        id,
			Symbol:    SymbolFor(id),
			Price:     price,
			Change24h: change,
		}, true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return quotes, nil
}
