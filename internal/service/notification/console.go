package notification

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

var _ Notifier = (*ConsoleNotifier)(nil)

// ConsoleNotifier 只打印消息, 用于本地调试
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleNotifier{out: out}
}

func (n *ConsoleNotifier) Name() string {
	return "console"
}

func (n *ConsoleNotifier) Notify(ctx context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := fmt.Fprintf(n.out, "%s\n\n", message); err != nil {
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	return nil
}
