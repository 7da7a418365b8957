package history

import (
	"sort"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Timer is a pending callback.
type Timer interface {
	// Stop cancels the callback. It reports false when the callback already
	// ran or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// =============================================================================
// RealScheduler
// =============================================================================

// RealScheduler schedules on the wall clock. Callbacks run on their own
// goroutine.
type RealScheduler struct {
	clock clock.WithDelayedExecution
}

// NewRealScheduler returns a scheduler backed by the system clock.
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{clock: clock.RealClock{}}
}

// AfterFunc implements Scheduler.
func (s *RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.clock.AfterFunc(d, f)
}

// Now implements Scheduler.
func (s *RealScheduler) Now() time.Time {
	return s.clock.Now()
}

// =============================================================================
// VirtualScheduler
// =============================================================================

// VirtualScheduler is a manually advanced clock. Callbacks run synchronously
// inside Advance, in deadline order, on the caller's goroutine.
type VirtualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*virtualTimer
}

type virtualTimer struct {
	s        *VirtualScheduler
	deadline time.Time
	seq      int
	f        func()
	done     bool
}

// NewVirtualScheduler creates a virtual clock starting at start.
func NewVirtualScheduler(start time.Time) *VirtualScheduler {
	return &VirtualScheduler{now: start}
}

// AfterFunc implements Scheduler.
func (s *VirtualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &virtualTimer{s: s, deadline: s.now.Add(d), seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Now implements Scheduler.
func (s *VirtualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of armed timers.
func (s *VirtualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Advance moves the clock forward by d and runs every timer that falls due.
// Timers armed by a callback run too when their deadline is within d.
func (s *VirtualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		t := s.nextDue(target)
		if t == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = t.deadline
		t.done = true
		s.remove(t)
		s.mu.Unlock()

		t.f()
	}
}

// nextDue returns the earliest timer with deadline <= target. Callers hold mu.
func (s *VirtualScheduler) nextDue(target time.Time) *virtualTimer {
	sort.SliceStable(s.timers, func(i, j int) bool {
		a, b := s.timers[i], s.timers[j]
		if a.deadline.Equal(b.deadline) {
			return a.seq < b.seq
		}
		return a.deadline.Before(b.deadline)
	})
	if len(s.timers) == 0 || s.timers[0].deadline.After(target) {
		return nil
	}
	return s.timers[0]
}

func (s *VirtualScheduler) remove(t *virtualTimer) {
	for i, x := range s.timers {
		if x == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// Stop implements Timer.
func (t *virtualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.s.remove(t)
	return true
}

var (
	_ Scheduler = (*RealScheduler)(nil)
	_ Scheduler = (*VirtualScheduler)(nil)
)
