package pricing

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultIDs 默认关注的币种, 使用 coingecko id
var DefaultIDs = []string{"bitcoin", "ethereum", "solana", "binancecoin", "ripple"}

var symbolByID = map[string]string{
	"bitcoin":     "BTC",
	"ethereum":    "ETH",
	"solana":      "SOL",
	"binancecoin": "BNB",
	"ripple":      "XRP",
	"cardano":     "ADA",
	"dogecoin":    "DOGE",
	"tron":        "TRX",
	"litecoin":    "LTC",
	"chainlink":   "LINK",
}

// SymbolFor 把 coingecko id 映射为交易代码, 未知 id 直接转大写
func SymbolFor(id string) string {
	if s, ok := symbolByID[strings.ToLower(id)]; ok {
		return s
	}
	return strings.ToUpper(id)
}

// Quote 现货报价, Change24h 为百分比
type Quote struct {
	ID        string
	Symbol    string
	Price     decimal.Decimal
	Change24h decimal.Decimal
}

type Source interface {
	Quotes(ctx context.Context, ids []string) ([]Quote, error)
	Name() string
}

// Sentiment 恐惧贪婪指数 0-100
type Sentiment struct {
	Value          int
	Classification string
}

type SentimentSource interface {
	Sentiment(ctx context.Context) (Sentiment, error)
}

type Commentator interface {
	Comment(ctx context.Context, quotes []Quote, sentiment *Sentiment) (string, error)
}
