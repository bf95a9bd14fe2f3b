// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package netstatus tracks whether the API host is reachable and reports
// offline to online transitions.
package netstatus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielhkuo/highlightly/timer"
)

// DefaultInterval is the probe cadence.
const DefaultInterval = 30 * time.Second

// probeTimeout bounds a single probe.
const probeTimeout = 5 * time.Second

// Prober checks connectivity. Any error counts as offline.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor probes on an interval. It starts out online.
type Monitor struct {
	prober   Prober
	clock    timer.Clock
	interval time.Duration
	online   atomic.Bool

	mu       sync.Mutex
	onOnline []func(ctx context.Context)
	tick     *timer.Interval
}

func New(prober Prober, clock timer.Clock, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	m := &Monitor{prober: prober, clock: clock, interval: interval}
	m.online.Store(true)
	return m
}

// Online reports the last known state.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// OnOnline registers fn to run on every offline to online transition.
func (m *Monitor) OnOnline(fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// Check probes once, records the result and fires the online handlers on
// a transition back online. It returns the new state.
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := m.prober.Ping(probeCtx)
	cancel()

	now := err == nil
	was := m.online.Swap(now)

	switch {
	case was && !now:
		slog.Warn("network offline", "error", err)
	case !was && now:
		slog.Info("network back online")
		m.mu.Lock()
		handlers := append([]func(context.Context){}, m.onOnline...)
		m.mu.Unlock()
		for _, fn := range handlers {
			fn(ctx)
		}
	}
	return now
}

// Start probes every interval until Stop.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tick != nil {
		m.tick.Stop()
	}
	m.tick = timer.Every(m.clock, m.interval, func() { m.Check(ctx) })
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tick != nil {
		m.tick.Stop()
		m.tick = nil
	}
}
