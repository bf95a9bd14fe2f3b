// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Account status values returned by the remote API
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
	StatusBanned    = "banned"
)

// Plan values
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Domain types

// UserRecords holds the per-user usage counters kept alongside the profile.
type UserRecords struct {
	RequestCount           int    `json:"requestCount"`
	SuccessfulRequestCount int    `json:"successfulRequestCount"`
	FailedRequestCount     int    `json:"failedRequestCount"`
	LastRequestDate        string `json:"lastRequestDate"`
}

// User is the canonical account profile. ExpiryDate is kept as the raw
// wire string so monitored-field comparison is exact.
type User struct {
	UserID         string       `json:"userId"`
	Email          string       `json:"email,omitempty"`
	Plan           string       `json:"plan,omitempty"`
	ExpiryDate     string       `json:"expiryDate,omitempty"`
	Username       string       `json:"username,omitempty"`
	CreatedAt      string       `json:"createdAt,omitempty"`
	Status         string       `json:"status,omitempty"`
	ExtensionMode  *bool        `json:"extensionMode,omitempty"`
	DisallowedList []string     `json:"disallowedList,omitempty"`
	Records        *UserRecords `json:"records,omitempty"`
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.ExtensionMode != nil {
		v := *u.ExtensionMode
		c.ExtensionMode = &v
	}
	if u.DisallowedList != nil {
		c.DisallowedList = append([]string(nil), u.DisallowedList...)
	}
	if u.Records != nil {
		r := *u.Records
		c.Records = &r
	}
	return &c
}

// SavedWord is one looked-up word in the local word database.
// Synced only ever moves from false to true.
type SavedWord struct {
	ID        string `json:"id"`
	Word      string `json:"word"`
	Meaning   string `json:"meaning"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"` // unix millis
	Synced    bool   `json:"synced"`
}

// AuthData is the persisted credential set.
type AuthData struct {
	AuthToken string `json:"authToken"`
	DeviceID  string `json:"deviceId,omitempty"`
	UserID    string `json:"userId"`
	User      *User  `json:"user"`
}

// AuthState is the session state exposed by the auth store.
// IsAuthenticated implies AuthToken and UserID are non-empty.
type AuthState struct {
	IsAuthenticated        bool   `json:"isAuthenticated"`
	UserID                 string `json:"userId"`
	AuthToken              string `json:"-"`
	User                   *User  `json:"user"`
	HasCompletedOnboarding bool   `json:"hasCompletedOnboarding"`
}

// SyncState is the local bookkeeping of the word sync task.
type SyncState struct {
	LastSyncTime       int64 `json:"lastSyncTime,omitempty"` // unix millis
	FailedSyncAttempts int   `json:"failedSyncAttempts"`
}

// DeviceInfo describes the browser the extension runs in.
type DeviceInfo struct {
	DeviceID       string `json:"deviceId,omitempty"`
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browserVersion"`
	OS             string `json:"os"`
	OSVersion      string `json:"osVersion"`
	Platform       string `json:"platform"`
	Engine         string `json:"engine"`
	DeviceUUID     string `json:"device_uuid"`
}

// WordResponse is a definition returned by POST /api/meaning.
type WordResponse struct {
	Word         string   `json:"word"`
	Meaning      string   `json:"meaning"`
	Phonetic     string   `json:"phonetic,omitempty"`
	PartOfSpeech string   `json:"partOfSpeech,omitempty"`
	Examples     []string `json:"examples,omitempty"`
}

// Remote API request/response types

type MeaningRequest struct {
	Word string `json:"word"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	User   *User  `json:"user"`
}

type SyncWordsRequest struct {
	Words []SavedWord `json:"words"`
}

type SyncWordsResponse struct {
	Success     bool   `json:"success"`
	SyncedCount int    `json:"syncedCount,omitempty"`
	Error       string `json:"error,omitempty"`
}

type WordsResponse struct {
	Words []SavedWord `json:"words"`
}

type UserResponse struct {
	User *User `json:"user"`
}

type InitDeviceResponse struct {
	DeviceID string `json:"deviceId"`
}

// Bridge request/response types

type ActivationRequest struct {
	IsActivated bool `json:"isActivated"`
}

type ActivationResponse struct {
	IsActivated bool `json:"isActivated"`
}

type SiteRequest struct {
	Site string `json:"site"`
}

type DisallowedResponse struct {
	DisallowedList []string `json:"disallowedList"`
	Changed        bool     `json:"changed"`
}

type WordListResponse struct {
	Words         []SavedWord `json:"words"`
	UnsyncedCount int         `json:"unsyncedCount"`
	Imported      int         `json:"imported,omitempty"`
}

type DeviceInitRequest struct {
	UserAgent string `json:"userAgent"`
}

type LookupRequest struct {
	Word string `json:"word"`
	URL  string `json:"url"`
}

type LookupResponse struct {
	Definition *WordResponse `json:"definition,omitempty"`
	Message    string        `json:"message,omitempty"`
	SavedID    string        `json:"savedId,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Skipped string `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

type StatusResponse struct {
	IsAuthenticated    bool   `json:"isAuthenticated"`
	UnsyncedWords      int    `json:"unsyncedWords"`
	FailedSyncAttempts int    `json:"failedSyncAttempts"`
	LastSyncTime       int64  `json:"lastSyncTime,omitempty"`
	LastSyncHuman      string `json:"lastSyncHuman,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
