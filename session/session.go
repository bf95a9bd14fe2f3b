// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/danielhkuo/highlightly/apiclient"
	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/notify"
	"github.com/danielhkuo/highlightly/storage"
)

// Sync area keys
const (
	KeyAuthToken   = "authToken"
	KeyUserID      = "userId"
	KeyUser        = "user"
	KeyOnboarding  = "hasCompletedOnboarding"
	KeyDeviceID    = "deviceId"
	KeyDeviceUUID  = "deviceUUID"
	KeyLastSync    = "lastSyncTime"
	KeyFailedSyncs = "failedSyncAttempts"
)

// AuthKeys are removed on every logout.
var AuthKeys = []string{KeyAuthToken, KeyUserID, KeyOnboarding, KeyUser}

// MonitoredFields are the user fields whose change is pushed to open contexts.
var MonitoredFields = []string{"expiryDate", "plan", "email", "username", "status"}

var tokenExpiry = regexp.MustCompile(`(?i)token.*expired|expired.*token|jwt.*expired|unauthorized`)

// LoadAuth reads the stored credentials. Missing keys leave fields empty.
func LoadAuth(ctx context.Context, s storage.Store) (models.AuthData, error) {
	var data models.AuthData
	items, err := s.Get(ctx, KeyAuthToken, KeyUserID, KeyUser, KeyDeviceID)
	if err != nil {
		return data, err
	}
	for key, dst := range map[string]interface{}{
		KeyAuthToken: &data.AuthToken,
		KeyUserID:    &data.UserID,
		KeyUser:      &data.User,
		KeyDeviceID:  &data.DeviceID,
	} {
		if _, err := storage.Decode(items, key, dst); err != nil {
			return data, err
		}
	}
	return data, nil
}

// LoadState reads the session as the auth store exposes it.
func LoadState(ctx context.Context, s storage.Store) (models.AuthState, error) {
	data, err := LoadAuth(ctx, s)
	if err != nil {
		return models.AuthState{}, err
	}

	items, err := s.Get(ctx, KeyOnboarding)
	if err != nil {
		return models.AuthState{}, err
	}
	var onboarded bool
	if _, err := storage.Decode(items, KeyOnboarding, &onboarded); err != nil {
		return models.AuthState{}, err
	}

	state := models.AuthState{
		User:                   data.User,
		HasCompletedOnboarding: onboarded,
	}
	if data.AuthToken != "" && data.UserID != "" {
		state.IsAuthenticated = true
		state.AuthToken = data.AuthToken
		state.UserID = data.UserID
	}
	return state, nil
}

// IsAuthError reports whether err means the credentials are no longer valid.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		if se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden {
			return true
		}
		return tokenExpiry.MatchString(se.Message)
	}
	return tokenExpiry.MatchString(err.Error())
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *apiclient.StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// LogoutReasonFor maps an API error to the message shown on forced logout.
func LogoutReasonFor(err error) string {
	switch {
	case err == nil:
		return models.ReasonSessionInvalid
	case IsNotFound(err):
		return models.ReasonAccountNotFound
	case IsAuthError(err):
		return models.ReasonSessionExpired
	default:
		return models.ReasonSessionInvalid
	}
}

// IsBlockedStatus reports whether an account status forbids a session.
func IsBlockedStatus(status string) bool {
	switch strings.ToLower(status) {
	case models.StatusSuspended, models.StatusDeleted, models.StatusBanned:
		return true
	}
	return false
}

// AccountStatusReason returns the logout reason for a blocked status.
func AccountStatusReason(status string) string {
	switch strings.ToLower(status) {
	case models.StatusSuspended:
		return models.ReasonAccountSuspended
	case models.StatusDeleted:
		return models.ReasonAccountDeleted
	case models.StatusBanned:
		return models.ReasonAccountBanned
	default:
		return models.ReasonSessionInvalid
	}
}

// IsValidUser reports whether u can back an authenticated session.
func IsValidUser(u *models.User) bool {
	return u != nil && u.UserID != ""
}

// MonitoredFieldsChanged compares the monitored fields of a cached and a
// fresh user. A nil cached user compares as empty.
func MonitoredFieldsChanged(cached, fresh *models.User) bool {
	if cached == nil {
		cached = &models.User{}
	}
	if fresh == nil {
		fresh = &models.User{}
	}
	return cached.ExpiryDate != fresh.ExpiryDate ||
		cached.Plan != fresh.Plan ||
		cached.Email != fresh.Email ||
		cached.Username != fresh.Username ||
		cached.Status != fresh.Status
}

// MergeLocal returns a copy of fresh carrying the locally owned fields of
// cached (extensionMode, disallowedList, records).
func MergeLocal(cached, fresh *models.User) *models.User {
	merged := fresh.Clone()
	if merged == nil || cached == nil {
		return merged
	}
	local := cached.Clone()
	if local.ExtensionMode != nil {
		merged.ExtensionMode = local.ExtensionMode
	}
	if local.DisallowedList != nil {
		merged.DisallowedList = local.DisallowedList
	}
	if local.Records != nil {
		merged.Records = local.Records
	}
	return merged
}

// Preserved reduces u to the fields kept across a logout.
func Preserved(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := u.Clone()
	return &models.User{
		CreatedAt:      c.CreatedAt,
		ExtensionMode:  c.ExtensionMode,
		DisallowedList: c.DisallowedList,
		Records:        c.Records,
	}
}

// Deps are the collaborators Terminate needs.
type Deps struct {
	Store    storage.Store
	Bus      storage.Broadcaster
	Notifier notify.Notifier
}

// Options tune Terminate.
type Options struct {
	// PreserveUser keeps the locally owned user fields and the onboarding flag.
	PreserveUser bool
	// Silent suppresses the notification.
	Silent bool
}

// Terminate ends the session. The broadcast and notification are sent even
// when clearing storage fails; the storage error is returned.
func Terminate(ctx context.Context, d Deps, reason string, opts Options) error {
	slog.Info("logout", "reason", reason, "preserve_user", opts.PreserveUser)

	err := clearSession(ctx, d.Store, opts.PreserveUser)
	if err != nil && !errors.Is(err, errNoSession) {
		slog.Error("logout: failed to clear session", "error", err)
	}

	d.Bus.Broadcast(models.Message{Type: models.MsgUserLoggedOut, Reason: reason})

	if errors.Is(err, errNoSession) {
		return nil
	}
	if !opts.Silent && d.Notifier != nil {
		d.Notifier.Notify(reason)
	}
	return err
}

var errNoSession = errors.New("no session")

func clearSession(ctx context.Context, s storage.Store, preserve bool) error {
	items, err := s.Get(ctx, KeyAuthToken, KeyUser)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	var token string
	if _, err := storage.Decode(items, KeyAuthToken, &token); err != nil {
		return err
	}
	if token == "" {
		return errNoSession
	}

	if !preserve {
		return s.Remove(ctx, AuthKeys...)
	}

	var user *models.User
	if _, err := storage.Decode(items, KeyUser, &user); err != nil {
		slog.Warn("logout: cached user unreadable, dropping it", "error", err)
		user = nil
	}
	if err := s.Remove(ctx, KeyAuthToken, KeyUserID); err != nil {
		return err
	}
	if kept := Preserved(user); kept != nil {
		return s.Set(ctx, map[string]any{KeyUser: kept})
	}
	return s.Remove(ctx, KeyUser)
}
