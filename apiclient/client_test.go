// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/highlightly/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestFetchMeaning(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/meaning", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "dev-1", r.Header.Get("Device-ID"))

		var req models.MeaningRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ephemeral", req.Word)

		writeJSON(w, http.StatusOK, models.WordResponse{Word: "ephemeral", Meaning: "short-lived"})
	})
	c.SetDeviceID("dev-1")

	resp, err := c.FetchMeaning(context.Background(), "tok", "ephemeral")
	require.NoError(t, err)
	assert.Equal(t, "short-lived", resp.Meaning)
}

func TestFetchMeaningAnonymousOmitsHeaders(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Device-ID"))
		writeJSON(w, http.StatusOK, models.WordResponse{Word: "cat"})
	})

	_, err := c.FetchMeaning(context.Background(), "", "cat")
	require.NoError(t, err)
}

func TestStatusErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusTooManyRequests, `{"message":"Daily limit reached"}`, "Daily limit reached"},
		{"error field", http.StatusUnauthorized, `{"error":"jwt expired"}`, "jwt expired"},
		{"plain text", http.StatusInternalServerError, "boom\n", "boom"},
		{"empty", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.GetUser(context.Background(), "tok", "u1")
			var se *StatusError
			require.True(t, errors.As(err, &se), "expected StatusError, got %v", err)
			assert.Equal(t, tt.status, se.Status)
			assert.Equal(t, tt.message, se.Message)
			assert.NotEmpty(t, se.Error())
		})
	}
}

func TestLogin(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, models.LoginResponse{Token: "tok", User: &models.User{UserID: "u1"}})
	})

	resp, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "u1", resp.UserID, "userId falls back to user.userId")

	_, err = c.Login(context.Background(), "a@b.c", "wrong")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Status)
}

func TestLoginWithoutToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"userId": "u1"})
	})
	_, err := c.Login(context.Background(), "a@b.c", "secret")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestSyncWords(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		success bool
	}{
		{"explicit success", `{"success":true,"syncedCount":2}`, true},
		{"explicit failure", `{"success":false,"error":"quota"}`, false},
		{"empty body", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				var req models.SyncWordsRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Len(t, req.Words, 2)
				w.Write([]byte(tt.body))
			})

			resp, err := c.SyncWords(context.Background(), "tok", []models.SavedWord{{ID: "a"}, {ID: "b"}})
			require.NoError(t, err)
			assert.Equal(t, tt.success, resp.Success)
		})
	}
}

func TestFetchWords(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	})

	words, err := c.FetchWords(context.Background(), "tok")
	require.NoError(t, err)
	assert.NotNil(t, words)
	assert.Empty(t, words)
}

func TestGetUserMissingPayload(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/u1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
	})

	user, err := c.GetUser(context.Background(), "tok", "u1")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpdateUser(t *testing.T) {
	var got models.User
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/users/u1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := c.UpdateUser(context.Background(), "tok", &models.User{UserID: "u1", Plan: models.PlanPremium})
	require.NoError(t, err)
	assert.Equal(t, models.PlanPremium, got.Plan)

	assert.Error(t, c.UpdateUser(context.Background(), "tok", nil))
}

func TestInitDevice(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var info models.DeviceInfo
		require.NoError(t, json.NewDecoder(r.Body).Decode(&info))
		if info.DeviceUUID == "" {
			writeJSON(w, http.StatusOK, models.InitDeviceResponse{})
			return
		}
		writeJSON(w, http.StatusOK, models.InitDeviceResponse{DeviceID: "dev-" + info.DeviceUUID})
	})

	id, err := c.InitDevice(context.Background(), models.DeviceInfo{DeviceUUID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "dev-abc", id)

	_, err = c.InitDevice(context.Background(), models.DeviceInfo{})
	assert.ErrorIs(t, err, ErrMissingDevice)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := New(srv.URL)
	srv.Close()

	_, err := c.FetchWords(context.Background(), "tok")
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))

	assert.Error(t, c.Ping(context.Background()))
}
