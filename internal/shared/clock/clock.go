// Package clock abstracts timed callbacks so timer-driven state machines
// can run against the wall clock in production and a manual clock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer (false if it already fired or was stopped).
	Stop() bool
}

// Scheduler runs callbacks after a delay
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// SchedulerFunc adapts a function to the Scheduler interface
type SchedulerFunc func(d time.Duration, fn func()) Timer

// AfterFunc implements Scheduler
func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) Timer { return f(d, fn) }

// Real schedules callbacks with time.AfterFunc. Callbacks run on their own
// goroutine.
type Real struct{}

// AfterFunc implements Scheduler
func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Fake is a manually advanced clock. Callbacks only fire from Advance, on
// the caller's goroutine, in deadline order (ties in scheduling order).
type Fake struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*fakeTimer
}

type fakeTimer struct {
	fake     *Fake
	deadline time.Duration
	seq      uint64
	fn       func()
	done     bool
}

// NewFake creates a manual clock at offset zero
func NewFake() *Fake {
	return &Fake{}
}

// AfterFunc implements Scheduler
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	t := &fakeTimer{fake: f, deadline: f.now + d, seq: f.seq, fn: fn}
	f.pending = append(f.pending, t)
	return t
}

// Stop implements Timer
func (t *fakeTimer) Stop() bool {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	t.fake.removeLocked(t)
	return true
}

func (f *Fake) removeLocked(t *fakeTimer) {
	for i, p := range f.pending {
		if p == t {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward, firing every callback that comes due,
// including callbacks scheduled by callbacks within the window.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now + d
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.nextLocked(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = next.deadline
		next.done = true
		f.removeLocked(next)
		f.mu.Unlock()

		next.fn()
	}
}

func (f *Fake) nextLocked(target time.Duration) *fakeTimer {
	if len(f.pending) == 0 {
		return nil
	}
	sort.SliceStable(f.pending, func(i, j int) bool {
		if f.pending[i].deadline == f.pending[j].deadline {
			return f.pending[i].seq < f.pending[j].seq
		}
		return f.pending[i].deadline < f.pending[j].deadline
	})
	if f.pending[0].deadline > target {
		return nil
	}
	return f.pending[0]
}

// Pending returns the number of callbacks waiting to fire
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Now returns the elapsed fake time
func (f *Fake) Now() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}
