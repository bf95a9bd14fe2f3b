// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timer

import (
	"sync"
	"time"
)

// Timer is a cancellable pending callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer.
	Stop() bool
}

// Clock abstracts wall-clock access.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// System returns a Clock backed by the time package.
func System() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Interval is a repeating timer created by Every.
type Interval struct {
	mu      sync.Mutex
	clock   Clock
	period  time.Duration
	fn      func()
	current Timer
	stopped bool
}

// Every runs fn every d until Stop is called. The first run happens after d.
func Every(clock Clock, d time.Duration, fn func()) *Interval {
	iv := &Interval{clock: clock, period: d, fn: fn}
	iv.mu.Lock()
	iv.arm()
	iv.mu.Unlock()
	return iv
}

// arm must be called with mu held.
func (iv *Interval) arm() {
	iv.current = iv.clock.AfterFunc(iv.period, iv.fire)
}

func (iv *Interval) fire() {
	iv.mu.Lock()
	if iv.stopped {
		iv.mu.Unlock()
		return
	}
	iv.arm()
	iv.mu.Unlock()

	iv.fn()
}

// Stop cancels future firings. A run already in progress is not interrupted.
func (iv *Interval) Stop() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	if iv.stopped {
		return false
	}
	iv.stopped = true
	if iv.current != nil {
		iv.current.Stop()
	}
	return true
}
