package ioc

import (
	"os"
	"path/filepath"

	"github.com/KNICEX/trade-monitor/internal/repo"
	"github.com/spf13/viper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 打开提醒记录库, 未启用时返回 nil
func InitDB() *gorm.DB {
	type Config struct {
		Enabled bool   `mapstructure:"enabled"`
		DSN     string `mapstructure:"dsn"`
	}

	var cfg Config
	if err := viper.UnmarshalKey("journal", &cfg); err != nil {
		panic(err)
	}
	if !cfg.Enabled {
		return nil
	}

	if dir := filepath.Dir(cfg.DSN); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic(err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		panic(err)
	}
	if err := repo.InitTables(db); err != nil {
		panic(err)
	}
	return db
}

// InitAlertRepo db 为 nil 时返回 nil, 监控不写记录
func InitAlertRepo(db *gorm.DB) repo.AlertRepo {
	if db == nil {
		return nil
	}
	return repo.NewAlertRepo(db)
}
