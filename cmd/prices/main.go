package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/KNICEX/trade-monitor/ioc"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// 一次性输出行情摘要. 出错只记录日志, 退出码始终为 0
func main() {
	file := pflag.String("config", "", "specify config file, empty to use env only")
	ids := pflag.StringSlice("ids", nil, "coingecko ids, overrides prices.ids")
	pflag.Parse()

	cfgErr := initConfig(*file)
	// stdout 留给报告
	l := ioc.InitLogger(os.Stderr)
	if cfgErr != nil {
		l.Error().Err(cfgErr).Msg("failed to load config")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := run(ctx, *ids, os.Stdout, l); err != nil {
		l.Error().Err(err).Msg("failed to build price summary")
	}
}

// initConfig 配置文件读取失败时默认值已经生效, 日志仍可用
func initConfig(file string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("load config %s: %v", file, r)
		}
	}()
	ioc.InitViper(file)
	return nil
}

// run 组装 reporter 并输出报告. ioc 对错误配置会 panic, 这里转成 error
func run(ctx context.Context, ids []string, out io.Writer, l zerolog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid price reporter config: %v", r)
		}
	}()

	reporter := ioc.InitReporter(ioc.InitPriceSource(), l)
	if len(ids) == 0 {
		ids = ioc.PriceIDs()
	}
	return reporter.Run(ctx, ids, out)
}
