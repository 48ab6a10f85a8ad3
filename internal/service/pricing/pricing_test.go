package pricing

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/KNICEX/trade-monitor/internal/service/llm"
	"github.com/KNICEX/trade-monitor/pkg/decimalx"
	"github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Quotes(ctx context.Context, ids []string) ([]Quote, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]Quote), args.Error(1)
}

func (m *MockSource) Name() string {
	return "mock"
}

type MockSentiment struct {
	mock.Mock
}

func (m *MockSentiment) Sentiment(ctx context.Context) (Sentiment, error) {
	args := m.Called(ctx)
	return args.Get(0).(Sentiment), args.Error(1)
}

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) AskOnce(ctx context.Context, q llm.Question) (llm.Answer, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(llm.Answer), args.Error(1)
}

func TestCoinGeckoSource_Quotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum,dogecoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "true", r.URL.Query().Get("include_24hr_change"))
		_, _ = w.Write([]byte(`{
			"ethereum": {"usd": 3120.55, "usd_24h_change": -1.23456},
			"bitcoin": {"usd": 64000.1, "usd_24h_change": 2.5}
		}`))
	}))
	defer srv.Close()

	src := NewCoinGeckoSource(srv.URL+"/", time.Second)
	quotes, err := src.Quotes(context.Background(), []string{"bitcoin", "ethereum", "dogecoin"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, "bitcoin", quotes[0].ID)
	assert.Equal(t, "BTC", quotes[0].Symbol)
	assert.True(t, decimalx.MustFromString("64000.1").Equal(quotes[0].Price))
	assert.Equal(t, "ethereum", quotes[1].ID)
	assert.Equal(t, "-1.23", decimalx.Fixed2(quotes[1].Change24h))
}

func TestCoinGeckoSource_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`},
		{name: "bad json", status: http.StatusOK, body: `[1,2`},
		{name: "bad price", status: http.StatusOK, body: `{"bitcoin":{"usd":"n/a"}}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewCoinGeckoSource(srv.URL, time.Second).Quotes(context.Background(), []string{"bitcoin"})
			assert.Error(t, err)
		})
	}
}

func TestBinanceSource_Quotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		switch r.URL.Query().Get("symbol") {
		case "BTCUSDT":
			_, _ = w.Write([]byte(`[{"symbol":"BTCUSDT","lastPrice":"64000.10","priceChangePercent":"1.250"}]`))
		case "SOLUSDT":
			_, _ = w.Write([]byte(`[{"symbol":"SOLUSDT","lastPrice":"145.2","priceChangePercent":"-3.100"}]`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
		}
	}))
	defer srv.Close()

	cli := binance.NewClient("", "")
	cli.BaseURL = srv.URL
	src := NewBinanceSource(cli)

	quotes, err := src.Quotes(context.Background(), []string{"bitcoin", "solana"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "BTC", quotes[0].Symbol)
	assert.True(t, decimalx.MustFromString("64000.1").Equal(quotes[0].Price))
	assert.Equal(t, "-3.10", decimalx.Fixed2(quotes[1].Change24h))

	_, err = src.Quotes(context.Background(), []string{"unknowncoin"})
	assert.Error(t, err)
}

func TestFearGreedSource_Sentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Fear and Greed Index","data":[{"value":"54","value_classification":"Neutral"}]}`))
	}))
	defer srv.Close()

	s, err := NewFearGreedSource(srv.URL, time.Second).Sentiment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Sentiment{Value: 54, Classification: "Neutral"}, s)
}

func TestFearGreedSource_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	_, err := NewFearGreedSource(srv.URL, time.Second).Sentiment(context.Background())
	assert.Error(t, err)
}

func TestReport_Render(t *testing.T) {
	report := Report{
		Quotes: []Quote{
			{ID: "bitcoin", Symbol: "BTC", Price: decimalx.MustFromString("64000.1"), Change24h: decimalx.MustFromString("2.5")},
			{ID: "ripple", Symbol: "XRP", Price: decimalx.MustFromString("0.52"), Change24h: decimalx.MustFromString("-1.5")},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf))

	want := "--- Crypto Price Summary ---\n" +
		"BITCOIN: $64000.1 (📈 2.50%)\n" +
		"RIPPLE: $0.52 (📉 -1.50%)\n" +
		"\n--- Spot Portfolio Suggestion (General) ---\n" +
		"1. Blue Chips (BTC/ETH): 60% - Core stability.\n" +
		"2. Mid-Caps (SOL/BNB): 20% - Growth potential.\n" +
		"3. Speculative/New Alts: 10% - High risk/reward.\n" +
		"4. Cash/Stables: 10% - For buying dips.\n"
	assert.Equal(t, want, buf.String())
}

func TestReporter_Run(t *testing.T) {
	quotes := []Quote{
		{ID: "bitcoin", Symbol: "BTC", Price: decimalx.MustFromString("64000"), Change24h: decimalx.MustFromString("1")},
	}
	source := &MockSource{}
	source.On("Quotes", mock.Anything, DefaultIDs).Return(quotes, nil)

	sentiment := &MockSentiment{}
	sentiment.On("Sentiment", mock.Anything).Return(Sentiment{Value: 71, Classification: "Greed"}, nil)

	model := &MockLLM{}
	model.On("AskOnce", mock.Anything, mock.MatchedBy(func(q llm.Question) bool {
		return strings.Contains(q.Content, "BTC: $64000 (1.00%)") &&
			strings.Contains(q.Content, "Fear & Greed Index: 71 (Greed)")
	})).Return(llm.Answer{Content: "  Momentum is positive.\n"}, nil)

	r := NewReporter(source, WithSentiment(sentiment), WithCommentator(NewLLMCommentator(model)))
	var buf bytes.Buffer
	require.NoError(t, r.Run(context.Background(), nil, &buf))

	out := buf.String()
	assert.Contains(t, out, "BITCOIN: $64000 (📈 1.00%)")
	assert.Contains(t, out, "Fear & Greed Index: 71 (Greed)")
	assert.Contains(t, out, "--- Commentary ---\nMomentum is positive.\n")
	source.AssertExpectations(t)
	model.AssertExpectations(t)
}

func TestReporter_OptionalPartsFail(t *testing.T) {
	source := &MockSource{}
	source.On("Quotes", mock.Anything, []string{"bitcoin"}).
		Return([]Quote{{ID: "bitcoin", Symbol: "BTC", Price: decimalx.MustFromString("1")}}, nil)
	sentiment := &MockSentiment{}
	sentiment.On("Sentiment", mock.Anything).Return(Sentiment{}, errors.New("timeout"))
	model := &MockLLM{}
	model.On("AskOnce", mock.Anything, mock.Anything).Return(llm.Answer{}, errors.New("quota"))

	r := NewReporter(source, WithSentiment(sentiment), WithCommentator(NewLLMCommentator(model)))
	report, err := r.Build(context.Background(), []string{"bitcoin"})
	require.NoError(t, err)
	assert.Nil(t, report.Sentiment)
	assert.Empty(t, report.Commentary)
	assert.Len(t, report.Quotes, 1)
}

func TestReporter_SourceFails(t *testing.T) {
	source := &MockSource{}
	source.On("Quotes", mock.Anything, mock.Anything).Return([]Quote(nil), errors.New("dns"))

	var buf bytes.Buffer
	err := NewReporter(source).Run(context.Background(), []string{"bitcoin"}, &buf)
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestSymbolFor(t *testing.T) {
	assert.Equal(t, "BNB", SymbolFor("binancecoin"))
	assert.Equal(t, "PEPE", SymbolFor("pepe"))
}
