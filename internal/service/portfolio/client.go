package portfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

const (
	tradesKey       = "lastTrades"
	maxSnapshotSize = 4 << 20
)

var _ Client = (*HTTPClient)(nil)

type HTTPClient struct {
	url     string
	cli     *http.Client
	timeout time.Duration
}

type Option func(c *HTTPClient)

// WithTimeout 单次请求的超时上限
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.timeout = d
	}
}

func WithHTTPClient(cli *http.Client) Option {
	return func(c *HTTPClient) {
		c.cli = cli
	}
}

func NewHTTPClient(url string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		url:     url,
		cli:     http.DefaultClient,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Fetch(ctx context.Context) (Snapshot, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.cli.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotSize))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Snapshot{}, fmt.Errorf("%w: unexpected status %d", ErrMalformed, resp.StatusCode)
	}
	return ParseSnapshot(body)
}

// ParseSnapshot 解析 /portfolio 响应体
func ParseSnapshot(body []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return Snapshot{}, fmt.Errorf("%w: body is not a json object", ErrMalformed)
	}

	snap := Snapshot{
		Trades: []string{},
		Fields: make(map[string]string, len(raw)),
	}

	switch trades := raw[tradesKey].(type) {
	case nil:
	case []any:
		snap.Trades = lo.Map(trades, func(item any, _ int) string {
			return stringify(item)
		})
	default:
		return Snapshot{}, fmt.Errorf("%w: %s is %T, want array", ErrMalformed, tradesKey, trades)
	}

	for k, v := range raw {
		if k == tradesKey {
			continue
		}
		snap.Fields[k] = stringify(v)
	}
	return snap, nil
}

// stringify 汇总字段按原样透传: 数字保留 json 文本, 对象/数组压缩成 json
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return cast.ToString(val)
	}
}
