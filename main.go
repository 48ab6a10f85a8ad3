package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/KNICEX/trade-monitor/ioc"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.yaml", "specify config file, empty to use env only")
	pflag.Parse()

	ioc.InitViper(*file)
	l := ioc.InitLogger(os.Stdout)

	journal := ioc.InitAlertRepo(ioc.InitDB())
	client := ioc.InitPortfolioClient()
	notifier := ioc.InitNotifier()

	tradeMonitor := ioc.InitTradeMonitor(client, notifier, journal, l)
	scheduler := ioc.InitScheduler(tradeMonitor, l)
	status := ioc.InitStatusServer(tradeMonitor, journal, l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info().Str("notifier", notifier.Name()).Msg("trade monitor starting")

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return scheduler.Run(ctx)
	})
	if status != nil {
		eg.Go(func() error {
			return status.Run(ctx)
		})
	}

	if err := eg.Wait(); err != nil {
		l.Error().Err(err).Msg("trade monitor stopped with error")
		os.Exit(1)
	}
	l.Info().Interface("stats", tradeMonitor.Stats()).Msg("trade monitor stopped")
}
