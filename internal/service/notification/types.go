package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotify 通知发送失败, 与拉取快照的错误区分开
var ErrNotify = errors.New("notification: dispatch failed")

type Notifier interface {
	Notify(ctx context.Context, message string) error
	Name() string
}

// CommandError 外部通知命令非零退出
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("notifier command %q exited with code %d", e.Command, e.ExitCode))
	if e.Stderr != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Stderr)
	}
	return sb.String()
}

func (e *CommandError) Unwrap() []error {
	return []error{ErrNotify, e.Err}
}
