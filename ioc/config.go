package ioc

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "TRADEMON"

// InitViper 读取配置文件, 环境变量 TRADEMON_<KEY> 覆盖文件中的值 (例如 TRADEMON_PORTFOLIO_URL).
// file 为空时只使用默认值和环境变量
func InitViper(file string) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	setDefaults()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			panic(err)
		}
	}

	// UnmarshalKey 读取的是整棵子树, 不会再查环境变量, 这里把每个 key 的最终值固化下来
	for _, key := range viper.AllKeys() {
		viper.Set(key, viper.Get(key))
	}
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", false)

	viper.SetDefault("portfolio.url", "")
	viper.SetDefault("portfolio.timeout", 5*time.Second)

	viper.SetDefault("monitor.interval", 10*time.Second)
	viper.SetDefault("monitor.error_policy", "log")
	viper.SetDefault("monitor.run_on_start", true)
	viper.SetDefault("monitor.template", "")
	viper.SetDefault("monitor.min_dispatch_interval", time.Duration(0))

	viper.SetDefault("notifier.kind", "command")
	viper.SetDefault("notifier.command", "npx clawdbot")
	viper.SetDefault("notifier.args", []string{})
	viper.SetDefault("notifier.target", "")
	viper.SetDefault("notifier.webhook_url", "")
	viper.SetDefault("notifier.timeout", 30*time.Second)

	viper.SetDefault("journal.enabled", false)
	viper.SetDefault("journal.dsn", "./data/alerts.db")

	viper.SetDefault("status.enabled", false)
	viper.SetDefault("status.addr", "127.0.0.1:8090")

	viper.SetDefault("prices.source", "coingecko")
	viper.SetDefault("prices.ids", []string{})
	viper.SetDefault("prices.coingecko_url", "")
	viper.SetDefault("prices.fear_greed_url", "")
	viper.SetDefault("prices.timeout", 10*time.Second)
	viper.SetDefault("prices.sentiment", true)
	viper.SetDefault("prices.commentary", false)

	viper.SetDefault("cex.binance.api_key", "")
	viper.SetDefault("cex.binance.api_secret", "")
	viper.SetDefault("cex.binance.base_url", "")

	viper.SetDefault("llm.gemini.api_key", []string{})
	viper.SetDefault("llm.gemini.model", "")
}
