// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/highlightly/device"
	"github.com/danielhkuo/highlightly/middleware"
	"github.com/danielhkuo/highlightly/models"
)

type DeviceHandler struct {
	svc Services
}

func NewDeviceHandler(svc Services) *DeviceHandler {
	return &DeviceHandler{svc: svc}
}

// Init handles POST /devices/init
// Registers the device with the remote API once and returns its device_id.
// The body may carry the browser's user agent; the request header is used
// otherwise.
func (h *DeviceHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req models.DeviceInitRequest
	if r.ContentLength != 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = r.UserAgent()
	}

	deviceID, err := device.EnsureID(r.Context(), h.svc.Local, h.svc.API, userAgent)
	if err != nil {
		slog.Error("failed to initialize device", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to initialize device")
		return
	}
	h.svc.API.SetDeviceID(deviceID)

	middleware.JSONResponse(w, http.StatusOK, models.InitDeviceResponse{DeviceID: deviceID})
}
