// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stores

import "sync"

// Value is an observable value holder.
type Value[T any] struct {
	mu   sync.RWMutex
	v    T
	next int
	subs map[int]func(T)
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[int]func(T))}
}

func (x *Value[T]) Get() T {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.v
}

// Set replaces the value and notifies subscribers.
func (x *Value[T]) Set(v T) {
	x.mu.Lock()
	x.v = v
	subs := x.snapshotLocked()
	x.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update applies fn to the current value atomically and notifies
// subscribers with the result.
func (x *Value[T]) Update(fn func(T) T) T {
	x.mu.Lock()
	v := fn(x.v)
	x.v = v
	subs := x.snapshotLocked()
	x.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
	return v
}

// Subscribe calls fn with the current value and after every change.
// The returned func unsubscribes.
func (x *Value[T]) Subscribe(fn func(T)) func() {
	x.mu.Lock()
	id := x.next
	x.next++
	x.subs[id] = fn
	v := x.v
	x.mu.Unlock()

	fn(v)
	return func() {
		x.mu.Lock()
		delete(x.subs, id)
		x.mu.Unlock()
	}
}

func (x *Value[T]) snapshotLocked() []func(T) {
	subs := make([]func(T), 0, len(x.subs))
	for _, fn := range x.subs {
		subs = append(subs, fn)
	}
	return subs
}
