package portfolio

import (
	"context"
	"errors"
)

var (
	// ErrFetch 网络/传输层错误, 包括超时
	ErrFetch = errors.New("portfolio: fetch failed")
	// ErrMalformed 状态码异常或响应体不是预期的 json
	ErrMalformed = errors.New("portfolio: malformed snapshot")
)

// Snapshot 单次轮询得到的组合快照, 只读
type Snapshot struct {
	// Trades 对应 lastTrades, 缺省为空
	Trades []string
	// Fields 其余顶层字段, 统一转成字符串透传给消息模板
	Fields map[string]string
}

// Field 返回汇总字段, 不存在时返回空串
func (s Snapshot) Field(key string) string {
	return s.Fields[key]
}

type Client interface {
	Fetch(ctx context.Context) (Snapshot, error)
}
