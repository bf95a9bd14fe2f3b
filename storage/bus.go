// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"log/slog"
	"sync"

	"github.com/danielhkuo/highlightly/models"
)

// Broadcaster delivers a message to every open context.
type Broadcaster interface {
	Broadcast(msg models.Message) int
}

// Bus is an in-process Broadcaster with channel subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan models.Message
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan models.Message)}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unregisters it and closes the channel; it is safe to call twice.
func (b *Bus) Subscribe(buffer int) (<-chan models.Message, func()) {
	ch := make(chan models.Message, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Broadcast sends msg to every subscriber without blocking and returns the
// number of subscribers that received it.
func (b *Bus) Broadcast(msg models.Message) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for id, ch := range b.subs {
		select {
		case ch <- msg:
			delivered++
		default:
			slog.Warn("broadcast dropped", "subscriber", id, "type", msg.Type)
		}
	}
	return delivered
}

// Subscribers returns the number of registered subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
