// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package device identifies the browser the extension runs in. The device
// UUID is generated locally once; the device id is allocated by the API
// from the device info and cached.
package device

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/session"
	"github.com/danielhkuo/highlightly/storage"
)

// Platform types
const (
	PlatformDesktop = "desktop"
	PlatformMobile  = "mobile"
	PlatformTablet  = "tablet"
	PlatformBot     = "bot"
)

// Initializer is the API call that allocates a device id.
type Initializer interface {
	InitDevice(ctx context.Context, info models.DeviceInfo) (string, error)
}

// EnsureUUID returns the stored device UUID, generating and storing one
// on first use.
func EnsureUUID(ctx context.Context, s storage.Store) (string, error) {
	items, err := s.Get(ctx, session.KeyDeviceUUID)
	if err != nil {
		return "", err
	}
	var id string
	if _, err := storage.Decode(items, session.KeyDeviceUUID, &id); err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := s.Set(ctx, map[string]any{session.KeyDeviceUUID: id}); err != nil {
		return "", fmt.Errorf("store device uuid: %w", err)
	}
	slog.Info("device uuid generated", "device_uuid", id)
	return id, nil
}

// Info parses a user agent into device info. DeviceID and DeviceUUID are
// left empty.
func Info(userAgent string) models.DeviceInfo {
	ua := useragent.New(userAgent)
	browser, browserVersion := ua.Browser()
	engine, _ := ua.Engine()
	osInfo := ua.OSInfo()

	return models.DeviceInfo{
		Browser:        browser,
		BrowserVersion: browserVersion,
		OS:             osInfo.Name,
		OSVersion:      osInfo.Version,
		Platform:       platformType(ua),
		Engine:         engine,
	}
}

func platformType(ua *useragent.UserAgent) string {
	switch {
	case ua.Bot():
		return PlatformBot
	case strings.Contains(ua.Platform(), "iPad") || strings.Contains(strings.ToLower(ua.OS()), "tablet"):
		return PlatformTablet
	case ua.Mobile():
		return PlatformMobile
	default:
		return PlatformDesktop
	}
}

// EnsureID returns the cached device id, registering the device with the
// API when none is stored.
func EnsureID(ctx context.Context, s storage.Store, api Initializer, userAgent string) (string, error) {
	items, err := s.Get(ctx, session.KeyDeviceID)
	if err != nil {
		return "", err
	}
	var id string
	if _, err := storage.Decode(items, session.KeyDeviceID, &id); err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}

	deviceUUID, err := EnsureUUID(ctx, s)
	if err != nil {
		return "", err
	}
	info := Info(userAgent)
	info.DeviceUUID = deviceUUID

	id, err = api.InitDevice(ctx, info)
	if err != nil {
		return "", fmt.Errorf("init device: %w", err)
	}
	if err := s.Set(ctx, map[string]any{session.KeyDeviceID: id}); err != nil {
		return "", fmt.Errorf("store device id: %w", err)
	}

	slog.Info("device registered", "device_id", id, "browser", info.Browser, "platform", info.Platform)
	return id, nil
}
