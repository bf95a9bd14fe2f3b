// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/highlightly/cliparse"
	"github.com/danielhkuo/highlightly/handlers"
	"github.com/danielhkuo/highlightly/middleware"
)

func NewRouter(svc handlers.Services, cfg cliparse.Config, deviceUUID string) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	bridgeHandler := handlers.NewBridgeHandler(svc)
	sessionHandler := handlers.NewSessionHandler(svc)
	wordHandler := handlers.NewWordHandler(svc)
	deviceHandler := handlers.NewDeviceHandler(svc)

	guard := middleware.RequireBridgeKey(deviceUUID, cfg.BridgeSalt)
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(guard(h)))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Messaging between extension contexts
	route("POST /messages", bridgeHandler.PostMessage)
	route("GET /events", bridgeHandler.Events)
	route("GET /status", bridgeHandler.GetStatus)

	// Session
	route("GET /session", sessionHandler.GetSession)
	route("POST /auth/login", sessionHandler.Login)
	route("POST /auth/logout", sessionHandler.Logout)
	route("POST /onboarding/complete", sessionHandler.CompleteOnboarding)

	// User preferences
	route("POST /activation", sessionHandler.SetActivation)
	route("POST /activation/toggle", sessionHandler.ToggleActivation)
	route("POST /records/reset", sessionHandler.ResetRecords)
	route("GET /disallowed", sessionHandler.GetDisallowed)
	route("POST /disallowed", sessionHandler.AddDisallowed)
	route("DELETE /disallowed/{site}", sessionHandler.RemoveDisallowed)

	// Words
	route("POST /meaning", wordHandler.Lookup)
	route("GET /words", wordHandler.ListWords)
	route("POST /words/pull", wordHandler.PullWords)
	route("DELETE /words", wordHandler.ClearWords)
	route("DELETE /words/{id}", wordHandler.DeleteWord)

	// Device
	route("POST /devices/init", deviceHandler.Init)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("highlightly bridge v1"))
	})

	return mux
}
