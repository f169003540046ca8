// Package schedtest provides a virtual-time Scheduler for deterministic tests.
package schedtest

import (
	"sort"
	"sync"
	"time"

	"github.com/zapper-tv/zapper/sched"
)

// Fake fires timers only when Advance moves its virtual clock past them.
// Callbacks run synchronously on the goroutine calling Advance, in due
// order, ties broken by creation order.
type Fake struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
	fired  int
}

type fakeTimer struct {
	fake    *Fake
	due     time.Duration
	period  time.Duration
	seq     int
	fn      func()
	stopped bool
}

var _ sched.Scheduler = (*Fake)(nil)

// New returns a Fake at virtual time zero.
func New() *Fake {
	return &Fake{}
}

// After implements sched.Scheduler.
func (f *Fake) After(d time.Duration, fn func()) sched.Timer {
	return f.add(d, 0, fn)
}

// Every implements sched.Scheduler. d must be positive.
func (f *Fake) Every(d time.Duration, fn func()) sched.Timer {
	if d <= 0 {
		panic("schedtest: non-positive interval")
	}
	return f.add(d, d, fn)
}

func (f *Fake) add(d, period time.Duration, fn func()) *fakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	t := &fakeTimer{fake: f, due: f.now + d, period: period, seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Stop implements sched.Timer.
func (t *fakeTimer) Stop() {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()

	t.stopped = true
	t.fake.remove(t)
}

func (f *Fake) remove(t *fakeTimer) {
	for i, other := range f.timers {
		if other == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return
		}
	}
}

// Advance moves virtual time forward by d, firing every timer that falls due,
// including timers armed by callbacks during the advance.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now + d
	f.mu.Unlock()

	for {
		f.mu.Lock()
		t := f.nextDue(target)
		if t == nil {
			f.now = target
			f.mu.Unlock()
			return
		}

		f.now = t.due
		if t.period > 0 {
			t.due += t.period
		} else {
			t.stopped = true
			f.remove(t)
		}
		f.fired++
		fn := t.fn
		f.mu.Unlock()

		fn()
	}
}

func (f *Fake) nextDue(limit time.Duration) *fakeTimer {
	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].due != f.timers[j].due {
			return f.timers[i].due < f.timers[j].due
		}
		return f.timers[i].seq < f.timers[j].seq
	})
	if len(f.timers) == 0 || f.timers[0].due > limit {
		return nil
	}
	return f.timers[0]
}

// Now returns the virtual time elapsed since New.
func (f *Fake) Now() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Pending returns the number of armed timers.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.timers)
}

// Fired returns how many callbacks have run so far.
func (f *Fake) Fired() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fired
}
