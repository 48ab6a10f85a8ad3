package monitor

import "sync"

// State 已提醒过的成交数. 只能前进, 进程重启后归零
type State struct {
	mu       sync.RWMutex
	lastSeen int
}

func NewState() *State {
	return &State{}
}

func (s *State) LastSeen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

// Advance 仅当 n 大于当前值时更新, 返回是否发生了变化
func (s *State) Advance(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= s.lastSeen {
		return false
	}
	s.lastSeen = n
	return true
}
