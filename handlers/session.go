// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/highlightly/middleware"
	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/stores"
)

type SessionHandler struct {
	svc Services
}

func NewSessionHandler(svc Services) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// GetSession handles GET /session
// The auth token never leaves the service.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.svc.Auth.Get())
}

// Login handles POST /auth/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	state, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		middleware.JSONResponse(w, http.StatusOK, state)
	case errors.Is(err, stores.ErrInvalidCredentials):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, stores.ErrInvalidUser):
		slog.Warn("login returned invalid user")
		middleware.ErrorResponse(w, http.StatusBadGateway, "Invalid user data received")
	default:
		slog.Error("failed to log in", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Login failed")
	}
}

// Logout handles POST /auth/logout
// ?silent=true skips the notification.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	silent := r.URL.Query().Get("silent") == "true"
	if err := h.svc.Auth.Logout(r.Context(), silent); err != nil {
		slog.Error("failed to log out", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Logout incomplete")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.svc.Auth.Get())
}

// CompleteOnboarding handles POST /onboarding/complete
func (h *SessionHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Auth.CompleteOnboarding(r.Context()); err != nil {
		slog.Error("failed to complete onboarding", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, h.svc.Auth.Get())
}

// SetActivation handles POST /activation
func (h *SessionHandler) SetActivation(w http.ResponseWriter, r *http.Request) {
	var req models.ActivationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.svc.Activation.SetActivation(r.Context(), req.IsActivated); err != nil {
		slog.Error("failed to set activation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ActivationResponse{
		IsActivated: h.svc.Activation.Get(),
	})
}

// ToggleActivation handles POST /activation/toggle
func (h *SessionHandler) ToggleActivation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Activation.Toggle(r.Context()); err != nil {
		slog.Error("failed to toggle activation", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ActivationResponse{
		IsActivated: h.svc.Activation.Get(),
	})
}

// ResetRecords handles POST /records/reset
// The counters are written through the buffered write like any update.
func (h *SessionHandler) ResetRecords(w http.ResponseWriter, r *http.Request) {
	h.svc.Records.Reset()
	middleware.JSONResponse(w, http.StatusOK, h.svc.Records.Get())
}

// GetDisallowed handles GET /disallowed
func (h *SessionHandler) GetDisallowed(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.DisallowedResponse{
		DisallowedList: h.disallowedList(),
	})
}

// AddDisallowed handles POST /disallowed
func (h *SessionHandler) AddDisallowed(w http.ResponseWriter, r *http.Request) {
	var req models.SiteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	changed, err := h.svc.Disallowed.AddSite(r.Context(), req.Site)
	h.writeDisallowed(w, changed, err)
}

// RemoveDisallowed handles DELETE /disallowed/{site}
func (h *SessionHandler) RemoveDisallowed(w http.ResponseWriter, r *http.Request) {
	changed, err := h.svc.Disallowed.RemoveSite(r.Context(), r.PathValue("site"))
	h.writeDisallowed(w, changed, err)
}

func (h *SessionHandler) writeDisallowed(w http.ResponseWriter, changed bool, err error) {
	if errors.Is(err, stores.ErrEmptySite) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "site is required")
		return
	}
	if err != nil {
		slog.Error("failed to update disallowed list", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.DisallowedResponse{
		DisallowedList: h.disallowedList(),
		Changed:        changed,
	})
}

func (h *SessionHandler) disallowedList() []string {
	list := h.svc.Disallowed.List()
	if list == nil {
		return []string{}
	}
	return list
}
