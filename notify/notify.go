// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify raises user-visible notifications. The bridge relays them
// to the extension, which renders them with the browser notification API.
package notify

import (
	"log/slog"
	"sync"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/storage"
)

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(text string)
}

// Broadcast is a Notifier that sends a NOTIFICATION message on a Broadcaster.
type Broadcast struct {
	bus storage.Broadcaster
}

func NewBroadcast(bus storage.Broadcaster) *Broadcast {
	return &Broadcast{bus: bus}
}

func (n *Broadcast) Notify(text string) {
	delivered := n.bus.Broadcast(models.Message{Type: models.MsgNotification, Text: text})
	slog.Info("notification", "message", text, "delivered", delivered)
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Notify(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
}

// Messages returns a copy of the recorded notifications.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
