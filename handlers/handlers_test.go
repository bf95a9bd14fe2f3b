// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/testutil"
)

func testServices(e *testutil.Env) Services {
	return Services{
		Auth:       e.Auth,
		Activation: e.Activation,
		Disallowed: e.Disallowed,
		Records:    e.Records,
		Words:      e.Words,
		Scheduler:  e.Scheduler,
		Bus:        e.Bus,
		Local:      e.Local,
		API:        e.Client,
	}
}

func hasMessage(msgs []models.Message, msgType string) bool {
	for _, m := range msgs {
		if m.Type == msgType {
			return true
		}
	}
	return false
}

func TestPostMessage(t *testing.T) {
	t.Run("sync words runs on the scheduler", func(t *testing.T) {
		e := testutil.NewEnv(t)
		e.Login(t)
		h := NewBridgeHandler(testServices(e))

		for _, word := range []string{"lucid", "serendipity"} {
			if _, err := e.Words.Add(context.Background(), models.SavedWord{Word: word, Meaning: "m"}); err != nil {
				t.Fatalf("Failed to add word: %v", err)
			}
		}

		req := testutil.MakeRequest("POST", "/messages", models.Message{Type: models.MsgSyncWords}, nil)
		w := httptest.NewRecorder()
		h.PostMessage(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.MessageResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Success || resp.Skipped != "" {
			t.Errorf("Expected successful sync, got %+v", resp)
		}
		if got := len(e.API.Synced()); got != 2 {
			t.Errorf("Expected 2 words synced, got %d", got)
		}
	})

	t.Run("sync words without session is skipped", func(t *testing.T) {
		e := testutil.NewEnv(t)
		h := NewBridgeHandler(testServices(e))

		req := testutil.MakeRequest("POST", "/messages", models.Message{Type: models.MsgSyncWords}, nil)
		w := httptest.NewRecorder()
		h.PostMessage(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.MessageResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Success || resp.Skipped == "" {
			t.Errorf("Expected skipped success, got %+v", resp)
		}
		if e.API.Calls("POST /api/words/sync") != 0 {
			t.Error("Expected no sync request without a session")
		}
	})

	t.Run("broadcast messages are relayed", func(t *testing.T) {
		e := testutil.NewEnv(t)
		events := e.Subscribe(t)
		h := NewBridgeHandler(testServices(e))

		msg := models.Message{Type: models.MsgDisallowedListUpdated, DisallowedList: []string{"example.com"}}
		w := httptest.NewRecorder()
		h.PostMessage(w, testutil.MakeRequest("POST", "/messages", msg, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		got := testutil.Drain(events)
		if len(got) != 1 || got[0].Type != models.MsgDisallowedListUpdated {
			t.Fatalf("Expected one relayed message, got %+v", got)
		}
		if len(got[0].DisallowedList) != 1 || got[0].DisallowedList[0] != "example.com" {
			t.Errorf("Expected list to be relayed, got %v", got[0].DisallowedList)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		e := testutil.NewEnv(t)
		h := NewBridgeHandler(testServices(e))

		w := httptest.NewRecorder()
		h.PostMessage(w, testutil.MakeRequest("POST", "/messages", models.Message{Type: "FETCH_EVERYTHING"}, nil))

		testutil.AssertStatus(t, w, http.StatusBadRequest)
		var resp models.MessageResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Error != "Unknown message type" {
			t.Errorf("Expected 'Unknown message type', got '%s'", resp.Error)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		e := testutil.NewEnv(t)
		h := NewBridgeHandler(testServices(e))

		w := httptest.NewRecorder()
		h.PostMessage(w, httptest.NewRequest("POST", "/messages", strings.NewReader("{")))

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestGetStatus(t *testing.T) {
	e := testutil.NewEnv(t)
	e.Login(t)
	h := NewBridgeHandler(testServices(e))
	ctx := context.Background()

	if _, err := e.Words.Add(ctx, models.SavedWord{Word: "lucid", Meaning: "clear"}); err != nil {
		t.Fatalf("Failed to add word: %v", err)
	}

	w := httptest.NewRecorder()
	h.GetStatus(w, testutil.MakeRequest("GET", "/status", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var before models.StatusResponse
	testutil.AssertJSON(t, w, &before)
	if !before.IsAuthenticated {
		t.Error("Expected authenticated status")
	}
	if before.UnsyncedWords != 1 {
		t.Errorf("Expected 1 unsynced word, got %d", before.UnsyncedWords)
	}
	if before.LastSyncTime != 0 || before.LastSyncHuman != "" {
		t.Errorf("Expected no last sync yet, got %+v", before)
	}

	if _, err := e.Scheduler.SyncWords(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	w = httptest.NewRecorder()
	h.GetStatus(w, testutil.MakeRequest("GET", "/status", nil, nil))
	var after models.StatusResponse
	testutil.AssertJSON(t, w, &after)
	if after.UnsyncedWords != 0 {
		t.Errorf("Expected 0 unsynced words, got %d", after.UnsyncedWords)
	}
	if after.LastSyncTime != e.Clock.Now().UnixMilli() {
		t.Errorf("Expected last sync %d, got %d", e.Clock.Now().UnixMilli(), after.LastSyncTime)
	}
	if !strings.HasSuffix(after.LastSyncHuman, "ago") {
		t.Errorf("Expected humanized last sync, got '%s'", after.LastSyncHuman)
	}
}

func TestEvents(t *testing.T) {
	e := testutil.NewEnv(t)
	h := NewBridgeHandler(testServices(e))

	server := httptest.NewServer(http.HandlerFunc(h.Events))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to open stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected Content-Type text/event-stream, got '%s'", ct)
	}

	// The auth store already listens on the bus.
	base := e.Bus.Subscribers()
	deadline := time.Now().Add(2 * time.Second)
	for e.Bus.Subscribers() == base {
		if time.Now().After(deadline) {
			t.Fatal("Stream never subscribed to the bus")
		}
		time.Sleep(5 * time.Millisecond)
	}

	activated := false
	e.Bus.Broadcast(models.Message{Type: models.MsgExtensionDeactivated, IsActivated: &activated})

	reader := bufio.NewReader(resp.Body)
	var event, data string
	for data == "" {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("Failed to read stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}

	if event != "message" {
		t.Errorf("Expected event 'message', got '%s'", event)
	}
	var msg models.Message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		t.Fatalf("Failed to decode event data: %v", err)
	}
	if msg.Type != models.MsgExtensionDeactivated || msg.IsActivated == nil || *msg.IsActivated {
		t.Errorf("Unexpected event payload: %+v", msg)
	}

	cancel()
	deadline = time.Now().Add(2 * time.Second)
	for e.Bus.Subscribers() != base {
		if time.Now().After(deadline) {
			t.Fatal("Stream did not unsubscribe after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFormatEvent(t *testing.T) {
	got := formatEvent("message", "a\nb")
	want := "event: message\ndata: a\ndata: b\n\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
