package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"
)

const (
	PlaceholderTarget  = "{target}"
	PlaceholderMessage = "{message}"

	maxStderr = 512
)

// DefaultCommandArgs 对应 `<notifier> message send --target <id> --message <text>`
var DefaultCommandArgs = []string{"message", "send", "--target", PlaceholderTarget, "--message", PlaceholderMessage}

var _ Notifier = (*CommandNotifier)(nil)

// CommandNotifier 调用外部命令行工具发送消息.
// 参数以数组形式传递, 不经过 shell, 消息内容无需转义
type CommandNotifier struct {
	name    string
	argv    []string
	args    []string
	target  string
	timeout time.Duration
}

type CommandOption func(n *CommandNotifier)

func WithArgs(args []string) CommandOption {
	return func(n *CommandNotifier) {
		if len(args) > 0 {
			n.args = args
		}
	}
}

func WithCommandTimeout(d time.Duration) CommandOption {
	return func(n *CommandNotifier) {
		n.timeout = d
	}
}

// NewCommandNotifier command 形如 "npx clawdbot", 按 shell 规则拆分
func NewCommandNotifier(command, target string, opts ...CommandOption) (*CommandNotifier, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse notifier command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("notifier command is empty")
	}
	n := &CommandNotifier{
		name:    "command",
		argv:    argv,
		args:    DefaultCommandArgs,
		target:  target,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func (n *CommandNotifier) Name() string {
	return n.name
}

// Args 返回完整的参数列表, 占位符已替换
func (n *CommandNotifier) Args(message string) []string {
	replacer := strings.NewReplacer(PlaceholderTarget, n.target, PlaceholderMessage, message)
	expanded := lo.Map(n.args, func(arg string, _ int) string {
		// 整个参数就是占位符时直接替换, 避免消息里的占位符文本被二次替换
		switch arg {
		case PlaceholderMessage:
			return message
		case PlaceholderTarget:
			return n.target
		}
		return replacer.Replace(arg)
	})
	return append(append([]string{}, n.argv[1:]...), expanded...)
}

func (n *CommandNotifier) Notify(ctx context.Context, message string) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, n.argv[0], n.Args(message)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	cmdErr := &CommandError{
		Command:  n.argv[0],
		ExitCode: -1,
		Stderr:   truncate(strings.TrimSpace(stderr.String()), maxStderr),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	return cmdErr
}

// truncate 按字节截断, 不切开多字节字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
