package monitor

import (
	"context"
	"errors"

	"github.com/KNICEX/trade-monitor/internal/schedule"
	"github.com/KNICEX/trade-monitor/internal/service/notification"
	"github.com/KNICEX/trade-monitor/internal/service/portfolio"
)

var _ schedule.Task = (*TradeMonitor)(nil)

// Run 供调度器调用. 已分类并记录过日志的错误不再向上返回
func (m *TradeMonitor) Run(ctx context.Context) error {
	_, err := m.PollOnce(ctx)
	if err == nil ||
		errors.Is(err, portfolio.ErrFetch) ||
		errors.Is(err, portfolio.ErrMalformed) ||
		errors.Is(err, notification.ErrNotify) {
		return nil
	}
	return err
}

func (m *TradeMonitor) Name() string {
	return "trade alert monitor"
}
