package history

import "github.com/riskibarqy/scorekeeper/internal/domain/scoring"

// MaxEntries bounds the undo stack, current state included.
const MaxEntries = 10

// Manager keeps the undo stack for one live session. The top entry is the
// current state. It is not safe for concurrent use.
type Manager struct {
	entries []scoring.MatchState
	limit   int
}

func NewManager() *Manager {
	return NewManagerWithLimit(MaxEntries)
}

func NewManagerWithLimit(limit int) *Manager {
	if limit < 1 {
		limit = MaxEntries
	}
	return &Manager{
		entries: make([]scoring.MatchState, 0, limit),
		limit:   limit,
	}
}

// Record pushes state unless it equals the top entry and reports whether it
// pushed. The oldest entry is dropped once the stack is over its limit.
func (m *Manager) Record(state scoring.MatchState) bool {
	if n := len(m.entries); n > 0 && m.entries[n-1] == state {
		return false
	}

	m.entries = append(m.entries, state)
	if len(m.entries) > m.limit {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:m.limit]
	}
	return true
}

// Undo drops the top entry and returns the new top. With one entry or none
// it changes nothing and returns the current state.
func (m *Manager) Undo() scoring.MatchState {
	if len(m.entries) > 1 {
		m.entries = m.entries[:len(m.entries)-1]
	}
	current, _ := m.Current()
	return current
}

func (m *Manager) Reset(initial scoring.MatchState) {
	m.entries = append(m.entries[:0], initial)
}

func (m *Manager) HasHistory() bool {
	return len(m.entries) > 1
}

func (m *Manager) Current() (scoring.MatchState, bool) {
	if len(m.entries) == 0 {
		return scoring.MatchState{}, false
	}
	return m.entries[len(m.entries)-1], true
}

func (m *Manager) Len() int {
	return len(m.entries)
}
