// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/highlightly/middleware"
	"github.com/danielhkuo/highlightly/models"
	"github.com/dustin/go-humanize"
)

type BridgeHandler struct {
	svc Services
}

func NewBridgeHandler(svc Services) *BridgeHandler {
	return &BridgeHandler{svc: svc}
}

// PostMessage handles POST /messages
// On-demand task messages run on the scheduler; broadcast messages are
// relayed to every other context.
func (h *BridgeHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var msg models.Message
	if err := middleware.ParseJSONBody(r, &msg); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch msg.Type {
	case models.MsgSyncWords, models.MsgCheckUserStatus, models.MsgSyncUserToBackend:
		resp := h.svc.Scheduler.HandleMessage(r.Context(), msg)
		middleware.JSONResponse(w, http.StatusOK, resp)

	case models.MsgUserUpdated, models.MsgExtensionActivated, models.MsgExtensionDeactivated,
		models.MsgDisallowedListUpdated, models.MsgUserLoggedOut:
		delivered := h.svc.Bus.Broadcast(msg)
		slog.Debug("message relayed", "type", msg.Type, "delivered", delivered)
		middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Success: true})

	default:
		middleware.JSONResponse(w, http.StatusBadRequest, models.MessageResponse{
			Success: false,
			Error:   "Unknown message type",
		})
	}
}

// GetStatus handles GET /status
// Reports the session flag and the sync bookkeeping.
func (h *BridgeHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	unsynced, err := h.svc.Words.UnsyncedCount(ctx)
	if err != nil {
		slog.Error("failed to count unsynced words", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	st, err := h.svc.Scheduler.SyncState(ctx)
	if err != nil {
		slog.Error("failed to read sync state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	resp := models.StatusResponse{
		IsAuthenticated:    h.svc.Auth.Get().IsAuthenticated,
		UnsyncedWords:      unsynced,
		FailedSyncAttempts: st.FailedSyncAttempts,
		LastSyncTime:       st.LastSyncTime,
	}
	if st.LastSyncTime > 0 {
		resp.LastSyncHuman = humanize.Time(time.UnixMilli(st.LastSyncTime))
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}
