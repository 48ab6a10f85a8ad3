package ioc

import (
	"fmt"
	"os"
	"time"

	"github.com/KNICEX/trade-monitor/internal/repo"
	"github.com/KNICEX/trade-monitor/internal/schedule"
	"github.com/KNICEX/trade-monitor/internal/service/monitor"
	"github.com/KNICEX/trade-monitor/internal/service/notification"
	"github.com/KNICEX/trade-monitor/internal/service/portfolio"
	"github.com/KNICEX/trade-monitor/internal/web"
	"github.com/KNICEX/trade-monitor/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type monitorConfig struct {
	Interval            time.Duration `mapstructure:"interval"`
	ErrorPolicy         string        `mapstructure:"error_policy"`
	RunOnStart          bool          `mapstructure:"run_on_start"`
	Template            string        `mapstructure:"template"`
	MinDispatchInterval time.Duration `mapstructure:"min_dispatch_interval"`
}

func loadMonitorConfig() monitorConfig {
	var cfg monitorConfig
	if err := viper.UnmarshalKey("monitor", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitPortfolioClient() portfolio.Client {
	type Config struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("portfolio", &cfg); err != nil {
		panic(err)
	}
	if cfg.URL == "" {
		panic("portfolio.url is required")
	}
	return portfolio.NewHTTPClient(cfg.URL, portfolio.WithTimeout(cfg.Timeout))
}

func InitNotifier() notification.Notifier {
	type Config struct {
		Kind       string        `mapstructure:"kind"`
		Command    string        `mapstructure:"command"`
		Args       []string      `mapstructure:"args"`
		Target     string        `mapstructure:"target"`
		WebhookURL string        `mapstructure:"webhook_url"`
		Timeout    time.Duration `mapstructure:"timeout"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("notifier", &cfg); err != nil {
		panic(err)
	}

	switch cfg.Kind {
	case "command":
		if cfg.Target == "" {
			panic("notifier.target is required for the command notifier")
		}
		n, err := notification.NewCommandNotifier(cfg.Command, cfg.Target,
			notification.WithArgs(cfg.Args),
			notification.WithCommandTimeout(cfg.Timeout),
		)
		if err != nil {
			panic(err)
		}
		return n
	case "webhook":
		if cfg.WebhookURL == "" {
			panic("notifier.webhook_url is required for the webhook notifier")
		}
		return notification.NewWebhookNotifier(cfg.WebhookURL, cfg.Target, cfg.Timeout)
	case "console":
		return notification.NewConsoleNotifier(os.Stdout)
	default:
		panic(fmt.Sprintf("unknown notifier kind %q", cfg.Kind))
	}
}

func InitTradeMonitor(client portfolio.Client, notifier notification.Notifier,
	journal repo.AlertRepo, l zerolog.Logger) *monitor.TradeMonitor {
	cfg := loadMonitorConfig()

	policy, err := monitor.ParseErrorPolicy(cfg.ErrorPolicy)
	if err != nil {
		panic(err)
	}

	opts := []monitor.Option{
		monitor.WithLogger(logger.Component(l, "monitor")),
		monitor.WithErrorPolicy(policy),
		monitor.WithJournal(journal),
		monitor.WithTarget(viper.GetString("notifier.target")),
		monitor.WithMinDispatchInterval(cfg.MinDispatchInterval),
	}
	if cfg.Template != "" {
		renderer, err := monitor.NewRenderer(cfg.Template)
		if err != nil {
			panic(err)
		}
		opts = append(opts, monitor.WithRenderer(renderer))
	}
	return monitor.NewTradeMonitor(client, notifier, opts...)
}

func InitScheduler(m *monitor.TradeMonitor, l zerolog.Logger) *schedule.Scheduler {
	cfg := loadMonitorConfig()

	s := schedule.NewScheduler(l)
	var opts []schedule.Option
	if cfg.RunOnStart {
		opts = append(opts, schedule.WithRunOnStart())
	}
	if err := s.Add(cfg.Interval, m, opts...); err != nil {
		panic(err)
	}
	return s
}

// InitStatusServer 未启用时返回 nil
func InitStatusServer(m *monitor.TradeMonitor, journal repo.AlertRepo, l zerolog.Logger) *web.StatusServer {
	type Config struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("status", &cfg); err != nil {
		panic(err)
	}
	if !cfg.Enabled {
		return nil
	}
	return web.NewStatusServer(cfg.Addr, m, journal, l)
}
