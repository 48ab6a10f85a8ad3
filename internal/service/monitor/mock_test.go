package monitor

import (
	"context"
	"sync"

	"github.com/KNICEX/trade-monitor/internal/service/portfolio"
	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockNotifier) Name() string {
	return "mock"
}

// scriptedClient 依次返回预设的快照或错误, 用完后重复最后一个
type scriptedClient struct {
	mu    sync.Mutex
	steps []step
	calls int
}

type step struct {
	trades []string
	fields map[string]string
	err    error
}

func (c *scriptedClient) push(s step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, s)
}

func (c *scriptedClient) Fetch(ctx context.Context) (portfolio.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.calls
	if idx >= len(c.steps) {
		idx = len(c.steps) - 1
	}
	c.calls++
	s := c.steps[idx]
	if s.err != nil {
		return portfolio.Snapshot{}, s.err
	}
	return portfolio.Snapshot{Trades: s.trades, Fields: s.fields}, nil
}

// recordingNotifier 记录每次发送的消息, failNext 为 true 时下一次发送失败
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	failNext bool
}

func (n *recordingNotifier) Notify(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext {
		n.failNext = false
		return errNotifierDown
	}
	n.messages = append(n.messages, message)
	return nil
}

func (n *recordingNotifier) Name() string {
	return "recording"
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}
