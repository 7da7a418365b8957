package history

import (
	"sync"
	"time"
)

// DefaultMaxSnapshots bounds the history length.
const DefaultMaxSnapshots = 50

// Snapshot is one history entry.
type Snapshot[T any] struct {
	State     T         `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// Stack is a bounded linear undo/redo history. Safe for concurrent use.
type Stack[T any] struct {
	mu      sync.Mutex
	entries []Snapshot[T]
	cursor  int
	max     int
	clone   func(T) T
	now     func() time.Time
}

// NewStack creates an empty history holding at most max snapshots.
// max <= 0 selects DefaultMaxSnapshots. A nil clone copies by value and a nil
// now uses time.Now.
func NewStack[T any](max int, clone func(T) T, now func() time.Time) *Stack[T] {
	if max <= 0 {
		max = DefaultMaxSnapshots
	}
	if clone == nil {
		clone = func(v T) T { return v }
	}
	if now == nil {
		now = time.Now
	}
	return &Stack[T]{max: max, clone: clone, now: now, cursor: -1}
}

// Snapshot records state as the newest entry. Entries after the cursor are
// discarded first; the oldest entry is evicted when the stack is full.
func (s *Stack[T]) Snapshot(state T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.entries[:s.cursor+1]
	s.entries = append(s.entries, Snapshot[T]{State: s.clone(state), Timestamp: s.now()})
	if over := len(s.entries) - s.max; over > 0 {
		// Copy down so the backing array does not grow without bound.
		s.entries = append(s.entries[:0], s.entries[over:]...)
	}
	s.cursor = len(s.entries) - 1
}

// Undo moves the cursor back and returns the state there.
// It reports false, and changes nothing, at the oldest entry.
func (s *Stack[T]) Undo() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor <= 0 {
		var zero T
		return zero, false
	}
	s.cursor--
	return s.clone(s.entries[s.cursor].State), true
}

// Redo moves the cursor forward and returns the state there.
// It reports false, and changes nothing, at the newest entry.
func (s *Stack[T]) Redo() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.entries)-1 {
		var zero T
		return zero, false
	}
	s.cursor++
	return s.clone(s.entries[s.cursor].State), true
}

// Current returns the entry under the cursor.
func (s *Stack[T]) Current() (Snapshot[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor < 0 {
		return Snapshot[T]{}, false
	}
	e := s.entries[s.cursor]
	return Snapshot[T]{State: s.clone(e.State), Timestamp: e.Timestamp}, true
}

// Len returns the number of stored snapshots.
func (s *Stack[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cursor returns the index of the current entry, -1 when empty.
func (s *Stack[T]) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// CanUndo reports whether Undo would move.
func (s *Stack[T]) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor > 0
}

// CanRedo reports whether Redo would move.
func (s *Stack[T]) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.entries)-1
}

// Reset drops every entry and, when state is given, seeds the history with it.
func (s *Stack[T]) Reset(state ...T) {
	s.mu.Lock()
	s.entries = nil
	s.cursor = -1
	s.mu.Unlock()

	for _, st := range state {
		s.Snapshot(st)
	}
}
