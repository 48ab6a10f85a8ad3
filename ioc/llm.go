package ioc

import (
	"context"

	"github.com/KNICEX/trade-monitor/internal/service/llm"
	"github.com/KNICEX/trade-monitor/internal/service/llm/gemini"
	"github.com/google/generative-ai-go/genai"
	"github.com/spf13/viper"
	"google.golang.org/api/option"
)

type geminiConfig struct {
	ApiKey []string `mapstructure:"api_key"`
	Model  string   `mapstructure:"model"`
}

func loadGeminiConfig() geminiConfig {
	var cfg geminiConfig
	if err := viper.UnmarshalKey("llm.gemini", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitGeminiCli() *genai.Client {
	cfg := loadGeminiConfig()
	if len(cfg.ApiKey) == 0 || cfg.ApiKey[0] == "" {
		panic("no gemini api key set")
	}

	cli, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.ApiKey[0]))
	if err != nil {
		panic(err)
	}
	return cli
}

func InitLLMService(cli *genai.Client) llm.Service {
	cfg := loadGeminiConfig()
	return gemini.NewService(cli, gemini.WithModel(cfg.Model), gemini.WithTemperature(0.4))
}
