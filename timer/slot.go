// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package timer

import (
	"sync"
	"time"
)

// Slot is a single-slot timer: at most one callback is pending at a time.
type Slot struct {
	mu      sync.Mutex
	clock   Clock
	pending Timer
	gen     uint64
}

// NewSlot creates an empty slot on the given clock.
func NewSlot(clock Clock) *Slot {
	return &Slot{clock: clock}
}

// Schedule cancels any pending callback and arms fn to run after d.
func (s *Slot) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.armLocked(d, fn)
}

// TrySchedule arms fn only when nothing is pending. It reports whether fn
// was armed; a false return means the request was dropped.
func (s *Slot) TrySchedule(d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return false
	}
	s.armLocked(d, fn)
	return true
}

// Stop cancels the pending callback, if any.
func (s *Slot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Pending reports whether a callback is armed and has not fired yet.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *Slot) stopLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	// Invalidate a callback that already fired but has not taken the lock.
	s.gen++
}

func (s *Slot) armLocked(d time.Duration, fn func()) {
	s.gen++
	gen := s.gen
	s.pending = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.pending = nil
		s.mu.Unlock()
		fn()
	})
}
