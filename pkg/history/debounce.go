package history

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a pending value is delivered.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces bursts of values and delivers the latest one after a
// quiet period. A triggered value is delivered exactly once, either by the
// timer or by Flush.
type Debouncer[T any] struct {
	mu      sync.Mutex
	sched   Scheduler
	delay   time.Duration
	deliver func(T)
	pending *T
	timer   Timer
	gen     uint64
	outer   sync.Locker
}

// NewDebouncer creates a debouncer that calls deliver with the latest value
// once delay has passed without a new Trigger. A nil sched uses the wall
// clock.
func NewDebouncer[T any](sched Scheduler, delay time.Duration, deliver func(T)) *Debouncer[T] {
	if sched == nil {
		sched = NewRealScheduler()
	}
	return &Debouncer[T]{sched: sched, delay: delay, deliver: deliver}
}

// SetLocker makes timer deliveries run while holding l. l is acquired before
// the pending value is claimed, so code holding l that calls Flush or Trigger
// never races a timer delivery. deliver must not acquire l itself.
func (d *Debouncer[T]) SetLocker(l sync.Locker) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outer = l
}

// Trigger replaces the pending value and re-arms the timer.
// With a zero delay the value is delivered immediately.
func (d *Debouncer[T]) Trigger(v T) {
	if d.delay <= 0 {
		d.Flush()
		d.deliver(v)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = &v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire delivers the pending value if no later Trigger or Flush superseded
// this timer.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	outer := d.outer
	d.mu.Unlock()
	if outer != nil {
		outer.Lock()
		defer outer.Unlock()
	}

	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	v := *d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	d.deliver(v)
}

// Flush delivers the pending value now, if any, and reports whether it did.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.pending == nil {
		d.mu.Unlock()
		return false
	}
	v := *d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.mu.Unlock()

	d.deliver(v)
	return true
}

// Cancel drops the pending value without delivering it.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a value is waiting for delivery.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
