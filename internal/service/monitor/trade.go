package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KNICEX/trade-monitor/internal/entity"
	"github.com/KNICEX/trade-monitor/internal/repo"
	"github.com/KNICEX/trade-monitor/internal/service/notification"
	"github.com/KNICEX/trade-monitor/internal/service/portfolio"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// TradeMonitor 轮询组合快照, 对 lastSeen 之后新出现的成交发送一条汇总提醒.
// 一个轮询周期内 读取-比较-发送-更新 持有 cycleMu, 并发调用会串行执行
type TradeMonitor struct {
	client   portfolio.Client
	notifier notification.Notifier
	renderer *Renderer
	state    *State
	journal  repo.AlertRepo
	limiter  *rate.Limiter
	policy   ErrorPolicy
	target   string
	log      zerolog.Logger

	now   func() time.Time
	newID func() string

	cycleMu sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

type Option func(m *TradeMonitor)

func WithLogger(l zerolog.Logger) Option {
	return func(m *TradeMonitor) {
		m.log = l
	}
}

func WithState(s *State) Option {
	return func(m *TradeMonitor) {
		m.state = s
	}
}

func WithRenderer(r *Renderer) Option {
	return func(m *TradeMonitor) {
		m.renderer = r
	}
}

// WithJournal 记录发送成功的提醒, nil 表示不记录
func WithJournal(journal repo.AlertRepo) Option {
	return func(m *TradeMonitor) {
		m.journal = journal
	}
}

func WithErrorPolicy(p ErrorPolicy) Option {
	return func(m *TradeMonitor) {
		m.policy = p
	}
}

// WithTarget 仅用于日志和提醒记录, 实际投递目标由 notifier 决定
func WithTarget(target string) Option {
	return func(m *TradeMonitor) {
		m.target = target
	}
}

// WithMinDispatchInterval 两次发送之间的最小间隔, 被限流的成交留到下一轮合并发送
func WithMinDispatchInterval(d time.Duration) Option {
	return func(m *TradeMonitor) {
		if d > 0 {
			m.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(m *TradeMonitor) {
		m.now = now
	}
}

func NewTradeMonitor(client portfolio.Client, notifier notification.Notifier, opts ...Option) *TradeMonitor {
	m := &TradeMonitor{
		client:   client,
		notifier: notifier,
		renderer: MustNewRenderer(DefaultTemplate),
		state:    NewState(),
		policy:   PolicyLog,
		log:      zerolog.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *TradeMonitor) LastSeen() int {
	return m.state.LastSeen()
}

func (m *TradeMonitor) Stats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	s := m.stats
	s.LastSeen = m.state.LastSeen()
	return s
}

// PollOnce 执行一个轮询周期.
// 拉取失败或快照格式错误: 不改变状态, 返回带 portfolio.ErrFetch / ErrMalformed 的错误.
// 通知失败: 不推进 lastSeen, 返回带 notification.ErrNotify 的错误, 下一轮重发同一批成交
func (m *TradeMonitor) PollOnce(ctx context.Context) (Result, error) {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	res := Result{CycleID: m.newID()}
	log := m.log.With().Str("cycle", res.CycleID).Logger()
	m.update(func(s *Stats) {
		s.Polls++
		s.LastPollAt = m.now()
	})

	snap, err := m.client.Fetch(ctx)
	if err != nil {
		m.onFetchError(log, err)
		res.LastSeen = m.state.LastSeen()
		return res, fmt.Errorf("fetch snapshot: %w", err)
	}
	m.onFetchOK(log)

	lastSeen := m.state.LastSeen()
	res.Total = len(snap.Trades)
	res.LastSeen = lastSeen

	if res.Total < lastSeen {
		// 上游重启后成交列表变短, lastSeen 不回退
		log.Warn().
			Int("total", res.Total).
			Int("lastSeen", lastSeen).
			Msg("trade list shrank below last seen count, waiting for it to grow")
		return res, nil
	}
	if res.Total == lastSeen {
		log.Debug().Int("total", res.Total).Msg("no new trades")
		return res, nil
	}

	newTrades := snap.Trades[lastSeen:]
	res.New = len(newTrades)

	msg, err := m.renderer.Render(MessageData{
		Trades: newTrades,
		Fields: snap.Fields,
		First:  lastSeen,
		Count:  len(newTrades),
		Total:  res.Total,
		Time:   m.now(),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to render alert message")
		return res, err
	}

	// 令牌在发送成功后才算消耗, 失败时归还, 下一轮可以立即重试
	var reservation *rate.Reservation
	reservedAt := m.now()
	if m.limiter != nil {
		reservation = m.limiter.ReserveN(reservedAt, 1)
		if !reservation.OK() || reservation.DelayFrom(reservedAt) > 0 {
			reservation.CancelAt(reservedAt)
			m.update(func(s *Stats) { s.DeferredByLimit++ })
			log.Info().Int("pending", res.New).Msg("dispatch deferred by rate limit")
			return res, nil
		}
	}

	log.Info().
		Int("new", res.New).
		Int("total", res.Total).
		Str("notifier", m.notifier.Name()).
		Msg("sending trade alert")

	if err := m.notifier.Notify(ctx, msg); err != nil {
		if reservation != nil {
			reservation.CancelAt(reservedAt)
		}
		m.update(func(s *Stats) {
			s.NotifyErrors++
			s.LastError = err.Error()
		})
		log.Error().
			Err(err).
			Str("notifier", m.notifier.Name()).
			Int("pending", res.New).
			Msg("failed to dispatch trade alert, will retry next cycle")
		return res, fmt.Errorf("%w: via %s: %w", notification.ErrNotify, m.notifier.Name(), err)
	}

	m.state.Advance(res.Total)
	res.Dispatched = true
	res.LastSeen = m.state.LastSeen()
	m.update(func(s *Stats) {
		s.AlertsSent++
		s.TradesAlerted += int64(res.New)
		s.LastAlertAt = m.now()
	})

	m.record(ctx, log, res, lastSeen, msg)
	return res, nil
}

func (m *TradeMonitor) record(ctx context.Context, log zerolog.Logger, res Result, first int, msg string) {
	if m.journal == nil {
		return
	}
	_, err := m.journal.Create(ctx, entity.Alert{
		CycleId:    res.CycleID,
		Notifier:   m.notifier.Name(),
		Target:     m.target,
		FirstIndex: first,
		TradeCount: res.New,
		TotalSeen:  res.LastSeen,
		Message:    msg,
		CreatedAt:  m.now(),
	})
	if err != nil {
		// 提醒已经送达, 记录失败不影响 lastSeen
		log.Error().Err(err).Msg("failed to journal alert")
	}
}

func (m *TradeMonitor) onFetchError(log zerolog.Logger, err error) {
	malformed := errors.Is(err, portfolio.ErrMalformed)
	var failures int
	m.update(func(s *Stats) {
		if malformed {
			s.MalformedSnapshots++
		} else {
			s.FetchErrors++
		}
		s.ConsecutiveFailures++
		s.LastError = err.Error()
		failures = s.ConsecutiveFailures
	})

	ev := log.Warn()
	if m.policy == PolicySilent {
		ev = log.Debug()
	}
	ev.Err(err).
		Bool("malformed", malformed).
		Int("consecutiveFailures", failures).
		Msg("skipping poll cycle")
}

func (m *TradeMonitor) onFetchOK(log zerolog.Logger) {
	var recovered int
	m.update(func(s *Stats) {
		recovered = s.ConsecutiveFailures
		s.ConsecutiveFailures = 0
	})
	if recovered > 0 {
		log.Info().Int("failedCycles", recovered).Msg("portfolio endpoint recovered")
	}
}

func (m *TradeMonitor) update(fn func(s *Stats)) {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	fn(&m.stats)
}
