package ioc

import (
	"io"

	"github.com/KNICEX/trade-monitor/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func InitLogger(out io.Writer) zerolog.Logger {
	var cfg logger.Config
	if err := viper.UnmarshalKey("log", &cfg); err != nil {
		panic(err)
	}
	return logger.NewWithWriter(cfg, out)
}
