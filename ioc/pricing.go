package ioc

import (
	"fmt"
	"time"

	"github.com/KNICEX/trade-monitor/internal/service/pricing"
	"github.com/KNICEX/trade-monitor/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type pricesConfig struct {
	Source       string        `mapstructure:"source"`
	IDs          []string      `mapstructure:"ids"`
	CoinGeckoURL string        `mapstructure:"coingecko_url"`
	FearGreedURL string        `mapstructure:"fear_greed_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Sentiment    bool          `mapstructure:"sentiment"`
	Commentary   bool          `mapstructure:"commentary"`
}

func loadPricesConfig() pricesConfig {
	var cfg pricesConfig
	if err := viper.UnmarshalKey("prices", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

// PriceIDs 配置的币种, 为空时由 Reporter 使用默认列表
func PriceIDs() []string {
	return loadPricesConfig().IDs
}

func InitPriceSource() pricing.Source {
	cfg := loadPricesConfig()
	switch cfg.Source {
	case "coingecko", "":
		return pricing.NewCoinGeckoSource(cfg.CoinGeckoURL, cfg.Timeout)
	case "binance":
		return pricing.NewBinanceSource(InitBinanceCli())
	default:
		panic(fmt.Sprintf("unknown price source %q", cfg.Source))
	}
}

func InitReporter(source pricing.Source, l zerolog.Logger) *pricing.Reporter {
	cfg := loadPricesConfig()

	opts := []pricing.ReporterOption{
		pricing.WithLogger(logger.Component(l, "prices")),
	}
	if cfg.Sentiment {
		opts = append(opts, pricing.WithSentiment(pricing.NewFearGreedSource(cfg.FearGreedURL, cfg.Timeout)))
	}
	if cfg.Commentary {
		llmSvc := InitLLMService(InitGeminiCli())
		opts = append(opts, pricing.WithCommentator(pricing.NewLLMCommentator(llmSvc)))
	}
	return pricing.NewReporter(source, opts...)
}
