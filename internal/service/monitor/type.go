package monitor

import (
	"fmt"
	"time"
)

// ErrorPolicy 拉取快照失败时的日志策略, 通知失败始终按 error 记录
type ErrorPolicy string

const (
	PolicyLog    ErrorPolicy = "log"
	PolicySilent ErrorPolicy = "silent"
)

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(s) {
	case "", PolicyLog:
		return PolicyLog, nil
	case PolicySilent:
		return PolicySilent, nil
	default:
		return "", fmt.Errorf("unknown error policy %q", s)
	}
}

// Result 单次轮询的结果
type Result struct {
	CycleID    string
	Total      int // 快照中的成交总数
	New        int // 本次新增的成交数
	Dispatched bool
	LastSeen   int // 本轮结束后的 lastSeen
}

type Stats struct {
	LastSeen            int       `json:"last_seen"`
	Polls               int64     `json:"polls"`
	FetchErrors         int64     `json:"fetch_errors"`
	MalformedSnapshots  int64     `json:"malformed_snapshots"`
	NotifyErrors        int64     `json:"notify_errors"`
	AlertsSent          int64     `json:"alerts_sent"`
	TradesAlerted       int64     `json:"trades_alerted"`
	DeferredByLimit     int64     `json:"deferred_by_limit"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastPollAt          time.Time `json:"last_poll_at"`
	LastAlertAt         time.Time `json:"last_alert_at,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
}
