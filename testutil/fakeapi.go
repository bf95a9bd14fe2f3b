// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/danielhkuo/highlightly/models"
)

// Credentials the fake API accepts
const (
	TestEmail    = "reader@example.com"
	TestPassword = "correct-horse"
	TestToken    = "test-token"
	TestUserID   = "user-1"
	TestDeviceID = "device-1"
)

// FakeAPI is an in-process stand-in for the remote API.
type FakeAPI struct {
	Server *httptest.Server

	mu          sync.Mutex
	user        models.User
	meanings    map[string]string
	synced      []models.SavedWord
	calls       map[string]int
	failMeaning int
	failSync    int
}

// NewFakeAPI starts a fake API with one premium user.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		user: models.User{
			UserID:     TestUserID,
			Email:      TestEmail,
			Plan:       models.PlanPremium,
			ExpiryDate: "2030-01-01T00:00:00Z",
			Username:   "reader",
			Status:     models.StatusActive,
		},
		meanings: map[string]string{},
		calls:    map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("HEAD /{$}", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("POST /auth/login", f.login)
	mux.HandleFunc("POST /api/meaning", f.meaning)
	mux.HandleFunc("POST /api/words/sync", f.syncWords)
	mux.HandleFunc("GET /api/words", f.words)
	mux.HandleFunc("GET /api/users/{id}", f.getUser)
	mux.HandleFunc("PUT /api/users/{id}", f.putUser)
	mux.HandleFunc("POST /api/devices/init", f.initDevice)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// URL is the base URL of the fake API
func (f *FakeAPI) URL() string { return f.Server.URL }

// SetMeaning registers the definition returned for word.
func (f *FakeAPI) SetMeaning(word, meaning string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meanings[strings.ToLower(word)] = meaning
}

// FailMeaning makes every meaning lookup answer with status.
func (f *FakeAPI) FailMeaning(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failMeaning = status
}

// FailSync makes every word sync answer with status.
func (f *FakeAPI) FailSync(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSync = status
}

// SetUser replaces the server-side user.
func (f *FakeAPI) SetUser(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = u
}

// User returns the server-side user.
func (f *FakeAPI) User() models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.user.Clone()
}

// SeedWords stores words on the server side as if synced earlier.
func (f *FakeAPI) SeedWords(words ...models.SavedWord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.synced = append(f.synced, words...)
}

// Synced returns every word the fake has received through sync.
func (f *FakeAPI) Synced() []models.SavedWord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SavedWord(nil), f.synced...)
}

// Calls returns how often the route pattern was hit, e.g. "POST /api/words/sync".
func (f *FakeAPI) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *FakeAPI) count(r *http.Request) {
	f.mu.Lock()
	f.calls[r.Pattern]++
	f.mu.Unlock()
}

func (f *FakeAPI) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+TestToken
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	if req.Email != TestEmail || req.Password != TestPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	user := f.User()
	writeJSON(w, http.StatusOK, models.LoginResponse{Token: TestToken, UserID: user.UserID, User: &user})
}

func (f *FakeAPI) meaning(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	var req models.MeaningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}

	f.mu.Lock()
	status := f.failMeaning
	meaning, ok := f.meanings[strings.ToLower(req.Word)]
	f.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]string{"message": "Daily limit reached"})
		return
	}
	if !ok {
		meaning = "A definition of " + req.Word
	}
	writeJSON(w, http.StatusOK, models.WordResponse{Word: req.Word, Meaning: meaning})
}

func (f *FakeAPI) syncWords(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	if !f.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
		return
	}

	f.mu.Lock()
	status := f.failSync
	f.mu.Unlock()
	if status != 0 {
		writeJSON(w, status, map[string]string{"message": "sync unavailable"})
		return
	}

	var req models.SyncWordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}

	f.mu.Lock()
	f.synced = append(f.synced, req.Words...)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, models.SyncWordsResponse{Success: true, SyncedCount: len(req.Words)})
}

func (f *FakeAPI) words(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	if !f.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
		return
	}
	writeJSON(w, http.StatusOK, models.WordsResponse{Words: f.Synced()})
}

func (f *FakeAPI) getUser(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	if !f.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
		return
	}
	user := f.User()
	if r.PathValue("id") != user.UserID {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, models.UserResponse{User: &user})
}

func (f *FakeAPI) putUser(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	if !f.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token expired"})
		return
	}
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	f.SetUser(user)
	writeJSON(w, http.StatusOK, models.UserResponse{User: &user})
}

func (f *FakeAPI) initDevice(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	var info models.DeviceInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil || info.DeviceUUID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "device_uuid required"})
		return
	}
	writeJSON(w, http.StatusOK, models.InitDeviceResponse{DeviceID: TestDeviceID})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
