// Package sched provides cancellable one-shot and recurring timers, and Slot,
// which keeps at most one timer of a kind outstanding.
package sched

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels future firings. It is idempotent and does not wait for a
	// callback that is already running.
	Stop()
}

// Scheduler creates timers. Callbacks may run on any goroutine.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// Real returns a Scheduler backed by the runtime timers.
func Real() Scheduler {
	return realScheduler{}
}

type realScheduler struct{}

func (realScheduler) After(d time.Duration, fn func()) Timer {
	return afterTimer{time.AfterFunc(d, fn)}
}

func (realScheduler) Every(d time.Duration, fn func()) Timer {
	t := &tickerTimer{stop: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return t
}

type afterTimer struct {
	t *time.Timer
}

func (a afterTimer) Stop() {
	a.t.Stop()
}

type tickerTimer struct {
	stop chan struct{}
	once sync.Once
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() { close(t.stop) })
}
