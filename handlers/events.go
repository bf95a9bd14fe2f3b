// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/highlightly/middleware"
)

// eventBuffer is the per-connection backlog before broadcasts are dropped.
const eventBuffer = 32

// Events handles GET /events
// Streams every broadcast as a server-sent "message" event until the
// client disconnects.
func (h *BridgeHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := h.svc.Bus.Subscribe(eventBuffer)
	defer cancel()

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	slog.Debug("event stream opened", "subscribers", h.svc.Bus.Subscribers())

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("event stream closed")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				slog.Error("failed to marshal event", "type", msg.Type, "error", err)
				continue
			}
			if _, err := fmt.Fprint(w, formatEvent("message", string(data))); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// formatEvent frames data as one SSE event, one data line per input line.
func formatEvent(event, data string) string {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(event)
	b.WriteString("\n")
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
