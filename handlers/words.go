// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/highlightly/apiclient"
	"github.com/danielhkuo/highlightly/db"
	"github.com/danielhkuo/highlightly/middleware"
	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/selection"
)

type WordHandler struct {
	svc Services
}

func NewWordHandler(svc Services) *WordHandler {
	return &WordHandler{svc: svc}
}

// Lookup handles POST /meaning
// Fetches a definition, counts the request and saves the word for sync.
func (h *WordHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req models.LookupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	word, err := selection.Validate(req.Word)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	h.svc.Records.IncrementRequest()

	def, err := h.svc.API.FetchMeaning(ctx, h.svc.Auth.Get().AuthToken, word)
	if err != nil {
		h.svc.Records.IncrementFailure()
		slog.Warn("failed to fetch meaning", "word", word, "error", err)
		middleware.JSONResponse(w, http.StatusBadGateway, models.LookupResponse{
			Message: lookupFailureMessage(word, err),
		})
		return
	}

	h.svc.Records.IncrementSuccess()
	h.svc.Records.SetLastRequestDate("")

	resp := models.LookupResponse{Definition: def}
	saved, err := h.svc.Words.Add(ctx, models.SavedWord{
		Word:    word,
		Meaning: def.Meaning,
		URL:     req.URL,
	})
	if err != nil {
		// The definition is still useful without the saved copy.
		slog.Error("failed to save word", "word", word, "error", err)
	} else {
		resp.SavedID = saved.ID
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

func lookupFailureMessage(word string, err error) string {
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		if se.Message != "" {
			return se.Message
		}
		return "Failed to fetch meaning"
	}
	return fmt.Sprintf("Network error while fetching meaning for %s.", word)
}

// ListWords handles GET /words
// Words are returned newest first.
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.svc.Words.Load(ctx); err != nil {
		slog.Error("failed to load words", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	unsynced, err := h.svc.Words.UnsyncedCount(ctx)
	if err != nil {
		slog.Error("failed to count unsynced words", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	words := h.svc.Words.Get()
	if words == nil {
		words = []models.SavedWord{}
	}
	middleware.JSONResponse(w, http.StatusOK, models.WordListResponse{
		Words:         words,
		UnsyncedCount: unsynced,
	})
}

// PullWords handles POST /words/pull
// Downloads the server's copy of the word list and merges it in.
func (h *WordHandler) PullWords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := h.svc.Auth.Get()
	if !state.IsAuthenticated {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Not logged in")
		return
	}

	remote, err := h.svc.API.FetchWords(ctx, state.AuthToken)
	if err != nil {
		slog.Warn("failed to fetch words", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to fetch words")
		return
	}
	imported, err := h.svc.Words.Import(ctx, remote)
	if err != nil {
		slog.Error("failed to import words", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	unsynced, err := h.svc.Words.UnsyncedCount(ctx)
	if err != nil {
		slog.Error("failed to count unsynced words", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("words pulled", "fetched", len(remote), "imported", imported)
	middleware.JSONResponse(w, http.StatusOK, models.WordListResponse{
		Words:         h.svc.Words.Get(),
		UnsyncedCount: unsynced,
		Imported:      imported,
	})
}

// ClearWords handles DELETE /words
func (h *WordHandler) ClearWords(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Words.Clear(r.Context()); err != nil {
		slog.Error("failed to clear words", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteWord handles DELETE /words/{id}
func (h *WordHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "word id is required")
		return
	}

	err := h.svc.Words.Remove(r.Context(), id)
	if errors.Is(err, db.ErrWordNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Word not found")
		return
	}
	if err != nil {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
