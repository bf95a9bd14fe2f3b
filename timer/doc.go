// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package timer provides the clock and timer primitives used by the selection
detector, the stores and the scheduler.

# Clock

Every time-dependent component takes a Clock:

	clk := timer.System()          // wall clock
	clk := timer.NewFake(start)    // virtual clock for tests

# Single-Slot Timers

A Slot holds at most one pending timer:

	slot := timer.NewSlot(clk)
	slot.Schedule(300*time.Millisecond, fn)  // debounce: replace pending
	slot.TrySchedule(10*time.Millisecond, fn) // throttle: drop while pending
	slot.Stop()

A timer that was replaced or stopped never runs its callback, even when it
already fired on another goroutine.

# Intervals

	stop := timer.Every(clk, 5*time.Minute, fn)
	stop.Stop()

Stopping an interval only prevents future firings.
*/
package timer
