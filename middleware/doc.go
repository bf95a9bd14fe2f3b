// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions for the
local bridge.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).
The wrapped writer still implements http.Flusher so the event stream works
through it.

# Bridge Key

Every route except /health is guarded by the bridge key:

	guard := middleware.RequireBridgeKey(deviceUUID, salt)
	mux.HandleFunc("GET /session", middleware.WithLogging(guard(h.GetSession)))

Requests without a matching X-Bridge-Key header get 401.

# CORS Middleware

Extension pages run on their own origins:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Bridge-Key.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.LookupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Rejected bridge keys are logged with the peer address. The bridge binds to
127.0.0.1, so X-Forwarded-For and X-Real-IP are ignored.
*/
package middleware
