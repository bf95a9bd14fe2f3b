// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielhkuo/highlightly/apiclient"
	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/notify"
	"github.com/danielhkuo/highlightly/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"401", &apiclient.StatusError{Status: http.StatusUnauthorized}, true},
		{"403", &apiclient.StatusError{Status: http.StatusForbidden}, true},
		{"wrapped 401", fmt.Errorf("get user: %w", &apiclient.StatusError{Status: 401}), true},
		{"500 with expiry message", &apiclient.StatusError{Status: 500, Message: "JWT has expired"}, true},
		{"500 plain", &apiclient.StatusError{Status: 500, Message: "boom"}, false},
		{"404", &apiclient.StatusError{Status: http.StatusNotFound}, false},
		{"transport with expired token", errors.New("expired token"), true},
		{"transport unauthorized", errors.New("Unauthorized request"), true},
		{"transport", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthError(tt.err))
		})
	}
}

func TestLogoutReasonFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, models.ReasonSessionInvalid},
		{"404", &apiclient.StatusError{Status: 404}, models.ReasonAccountNotFound},
		{"401", &apiclient.StatusError{Status: 401}, models.ReasonSessionExpired},
		{"token message", errors.New("token expired"), models.ReasonSessionExpired},
		{"other", errors.New("timeout"), models.ReasonSessionInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LogoutReasonFor(tt.err))
		})
	}
}

func TestAccountStatus(t *testing.T) {
	tests := []struct {
		status  string
		blocked bool
		reason  string
	}{
		{"suspended", true, models.ReasonAccountSuspended},
		{"Deleted", true, models.ReasonAccountDeleted},
		{"BANNED", true, models.ReasonAccountBanned},
		{"active", false, models.ReasonSessionInvalid},
		{"", false, models.ReasonSessionInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.blocked, IsBlockedStatus(tt.status))
			assert.Equal(t, tt.reason, AccountStatusReason(tt.status))
		})
	}
}

func TestIsValidUser(t *testing.T) {
	assert.False(t, IsValidUser(nil))
	assert.False(t, IsValidUser(&models.User{}))
	assert.True(t, IsValidUser(&models.User{UserID: "u1"}))
}

func TestMonitoredFieldsChanged(t *testing.T) {
	base := models.User{
		UserID:     "u1",
		Email:      "a@b.c",
		Plan:       models.PlanFree,
		ExpiryDate: "2026-01-01",
		Username:   "ann",
		Status:     models.StatusActive,
	}

	same := base
	same.ExtensionMode = boolPtr(false)
	same.Records = &models.UserRecords{RequestCount: 9}
	assert.False(t, MonitoredFieldsChanged(&base, &same), "non-monitored fields are ignored")

	mutations := map[string]func(u *models.User){
		"expiryDate": func(u *models.User) { u.ExpiryDate = "2027-01-01" },
		"plan":       func(u *models.User) { u.Plan = models.PlanPremium },
		"email":      func(u *models.User) { u.Email = "x@y.z" },
		"username":   func(u *models.User) { u.Username = "bob" },
		"status":     func(u *models.User) { u.Status = "pending" },
	}
	require.Len(t, mutations, len(MonitoredFields))

	for field, mutate := range mutations {
		t.Run(field, func(t *testing.T) {
			fresh := base
			mutate(&fresh)
			assert.True(t, MonitoredFieldsChanged(&base, &fresh))
		})
	}

	assert.True(t, MonitoredFieldsChanged(nil, &base))
	assert.False(t, MonitoredFieldsChanged(nil, &models.User{UserID: "u1"}))
}

func TestMergeLocal(t *testing.T) {
	cached := &models.User{
		UserID:         "u1",
		Plan:           models.PlanFree,
		ExtensionMode:  boolPtr(false),
		DisallowedList: []string{"example.com"},
		Records:        &models.UserRecords{RequestCount: 4},
	}
	fresh := &models.User{UserID: "u1", Plan: models.PlanPremium}

	merged := MergeLocal(cached, fresh)
	assert.Equal(t, models.PlanPremium, merged.Plan)
	require.NotNil(t, merged.ExtensionMode)
	assert.False(t, *merged.ExtensionMode)
	assert.Equal(t, []string{"example.com"}, merged.DisallowedList)
	assert.Equal(t, 4, merged.Records.RequestCount)

	merged.DisallowedList[0] = "changed"
	assert.Equal(t, "example.com", cached.DisallowedList[0])
	assert.Nil(t, fresh.ExtensionMode, "fresh user is not mutated")

	assert.Nil(t, MergeLocal(cached, nil))
	assert.Equal(t, fresh, MergeLocal(nil, fresh))
}

func seedSession(t *testing.T, s storage.Store, user *models.User) {
	t.Helper()
	require.NoError(t, s.Set(context.Background(), map[string]any{
		KeyAuthToken:  "tok",
		KeyUserID:     "u1",
		KeyUser:       user,
		KeyOnboarding: true,
	}))
}

func TestLoadState(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()

	state, err := LoadState(ctx, s)
	require.NoError(t, err)
	assert.False(t, state.IsAuthenticated)

	seedSession(t, s, &models.User{UserID: "u1"})
	state, err = LoadState(ctx, s)
	require.NoError(t, err)
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "tok", state.AuthToken)
	assert.Equal(t, "u1", state.UserID)
	assert.True(t, state.HasCompletedOnboarding)
	require.NotNil(t, state.User)

	// Token without user id is not authenticated
	require.NoError(t, s.Remove(ctx, KeyUserID))
	state, err = LoadState(ctx, s)
	require.NoError(t, err)
	assert.False(t, state.IsAuthenticated)
	assert.Empty(t, state.AuthToken)
}

func newDeps() (Deps, *storage.Bus, *notify.Recorder) {
	bus := storage.NewBus()
	rec := &notify.Recorder{}
	return Deps{Store: storage.NewMemory(), Bus: bus, Notifier: rec}, bus, rec
}

func TestTerminate(t *testing.T) {
	ctx := context.Background()
	d, bus, rec := newDeps()
	ch, cancel := bus.Subscribe(4)
	defer cancel()

	seedSession(t, d.Store, &models.User{UserID: "u1", Records: &models.UserRecords{RequestCount: 2}})

	require.NoError(t, Terminate(ctx, d, models.ReasonAccountBanned, Options{}))

	items, err := d.Store.Get(ctx, AuthKeys...)
	require.NoError(t, err)
	assert.Empty(t, items)

	msg := <-ch
	assert.Equal(t, models.MsgUserLoggedOut, msg.Type)
	assert.Equal(t, models.ReasonAccountBanned, msg.Reason)
	assert.Equal(t, []string{models.ReasonAccountBanned}, rec.Messages())
}

func TestTerminatePreserveUser(t *testing.T) {
	ctx := context.Background()
	d, _, rec := newDeps()

	seedSession(t, d.Store, &models.User{
		UserID:         "u1",
		Email:          "a@b.c",
		CreatedAt:      "2025-01-01",
		ExtensionMode:  boolPtr(true),
		DisallowedList: []string{"bank.com"},
		Records:        &models.UserRecords{RequestCount: 7},
	})

	require.NoError(t, Terminate(ctx, d, models.ReasonManual, Options{PreserveUser: true, Silent: true}))
	assert.Empty(t, rec.Messages(), "silent logout does not notify")

	items, err := d.Store.Get(ctx, KeyAuthToken, KeyUserID, KeyUser, KeyOnboarding)
	require.NoError(t, err)
	assert.NotContains(t, items, KeyAuthToken)
	assert.NotContains(t, items, KeyUserID)
	assert.Contains(t, items, KeyOnboarding)

	var kept models.User
	require.NoError(t, json.Unmarshal(items[KeyUser], &kept))
	assert.Empty(t, kept.UserID)
	assert.Empty(t, kept.Email)
	assert.Equal(t, "2025-01-01", kept.CreatedAt)
	assert.Equal(t, 7, kept.Records.RequestCount)
	assert.Equal(t, []string{"bank.com"}, kept.DisallowedList)
	assert.True(t, *kept.ExtensionMode)
}

func TestTerminateWithoutSessionOnlyBroadcasts(t *testing.T) {
	d, bus, rec := newDeps()
	ch, cancel := bus.Subscribe(4)
	defer cancel()

	for i := 0; i < 2; i++ {
		require.NoError(t, Terminate(context.Background(), d, models.ReasonSessionExpired, Options{}))
	}

	assert.Len(t, ch, 2)
	assert.Empty(t, rec.Messages())
}

type failingStore struct{ storage.Store }

func (failingStore) Remove(context.Context, ...string) error { return errors.New("disk full") }

func TestTerminateStorageFailureStillNotifies(t *testing.T) {
	d, bus, rec := newDeps()
	seedSession(t, d.Store, &models.User{UserID: "u1"})
	d.Store = failingStore{d.Store}
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	err := Terminate(context.Background(), d, models.ReasonSessionExpired, Options{})
	assert.Error(t, err)
	assert.Len(t, ch, 1)
	assert.Equal(t, []string{models.ReasonSessionExpired}, rec.Messages())
}
