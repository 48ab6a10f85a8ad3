package pricing

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

const quoteAsset = "USDT"

var _ Source = (*BinanceSource)(nil)

// BinanceSource 使用币安现货 24h ticker, 币种按 <SYMBOL>USDT 查询
type BinanceSource struct {
	cli *binance.Client
}

func NewBinanceSource(cli *binance.Client) *BinanceSource {
	return &BinanceSource{cli: cli}
}

func (s *BinanceSource) Name() string {
	return "binance"
}

func (s *BinanceSource) Quotes(ctx context.Context, ids []string) ([]Quote, error) {
	quotes := make([]Quote, 0, len(ids))
	for _, id := range ids {
		symbol := SymbolFor(id)
		stats, err := s.cli.NewListPriceChangeStatsService().Symbol(symbol + quoteAsset).Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("binance ticker %s%s: %w", symbol, quoteAsset, err)
		}
		if len(stats) == 0 {
			return nil, fmt.Errorf("binance ticker %s%s not found", symbol, quoteAsset)
		}
		price, err := decimal.NewFromString(stats[0].LastPrice)
		if err != nil {
			return nil, fmt.Errorf("parse %s price: %w", symbol, err)
		}
		change, err := decimal.NewFromString(stats[0].PriceChangePercent)
		if err != nil {
			return nil, fmt.Errorf("parse %s change: %w", symbol, err)
		}
		quotes = append(quotes, Quote{
			ID:        id,
			Symbol:    symbol,
			Price:     price,
			Change24h: change,
		})
	}
	return quotes, nil
}
