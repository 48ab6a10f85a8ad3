package entity

import (
	"time"
)

// Alert 已成功发送的成交提醒
type Alert struct {
	Id         int64  `gorm:"primaryKey;autoIncrement"`
	CycleId    string `gorm:"uniqueIndex"`
	Notifier   string `gorm:"index"`
	Target     string `gorm:"index"`
	FirstIndex int    // 本次提醒第一笔成交在 lastTrades 中的下标
	TradeCount int    // 本次提醒包含的成交笔数
	TotalSeen  int    // 发送后的 lastSeen
	Message    string
	CreatedAt  time.Time `gorm:"index"`
}
