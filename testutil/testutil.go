// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/highlightly/auth"
	"github.com/danielhkuo/highlightly/cliparse"
	"github.com/danielhkuo/highlightly/db"
)

// Fixed identity of the device under test
const (
	TestDeviceUUID = "0b6f1b8e-4c1d-4f6a-9a57-3f0c2d1e7a10"
	TestBridgeSalt = "test-bridge-salt"
)

// SetupTestDB opens a fresh in-memory database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              cliparse.DefaultPort,
		DatabaseURL:       ":memory:",
		DatabaseType:      db.TypeSQLite,
		APIURL:            cliparse.DefaultAPIURL,
		BridgeSalt:        TestBridgeSalt,
		LogLevel:          "info",
		LogFormat:         "text",
		SyncInterval:      cliparse.DefaultSyncInterval,
		UserCheckInterval: cliparse.DefaultUserCheckInterval,
		InitialDelay:      cliparse.DefaultInitialDelay,
		ProbeInterval:     cliparse.DefaultProbeInterval,
		HTTPTimeout:       cliparse.DefaultHTTPTimeout,
	}
}

// BridgeHeaders returns the headers an authorized extension context sends
func BridgeHeaders() map[string]string {
	return map[string]string{
		"X-Bridge-Key": auth.GenerateBridgeKey(TestDeviceUUID, TestBridgeSalt),
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
