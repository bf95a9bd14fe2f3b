// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/stores"
	"github.com/danielhkuo/highlightly/testutil"
)

func TestLogin(t *testing.T) {
	testCases := []struct {
		name           string
		body           models.LoginRequest
		expectedStatus int
	}{
		{"valid credentials", models.LoginRequest{Email: testutil.TestEmail, Password: testutil.TestPassword}, http.StatusOK},
		{"wrong password", models.LoginRequest{Email: testutil.TestEmail, Password: "nope"}, http.StatusUnauthorized},
		{"missing password", models.LoginRequest{Email: testutil.TestEmail}, http.StatusBadRequest},
		{"blank email", models.LoginRequest{Email: "   ", Password: "x"}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := testutil.NewEnv(t)
			h := NewSessionHandler(testServices(e))

			w := httptest.NewRecorder()
			h.Login(w, testutil.MakeRequest("POST", "/auth/login", tc.body, nil))

			testutil.AssertStatus(t, w, tc.expectedStatus)
			if tc.expectedStatus != http.StatusOK {
				if e.Auth.Get().IsAuthenticated {
					t.Error("Expected session to stay logged out")
				}
				return
			}

			var state models.AuthState
			testutil.AssertJSON(t, w, &state)
			if !state.IsAuthenticated || state.UserID != testutil.TestUserID {
				t.Errorf("Expected authenticated state for %s, got %+v", testutil.TestUserID, state)
			}
			if !e.Scheduler.Running() {
				t.Error("Expected scheduler to start after login")
			}
		})
	}
}

func TestGetSessionHidesToken(t *testing.T) {
	e := testutil.NewEnv(t)
	e.Login(t)
	h := NewSessionHandler(testServices(e))

	w := httptest.NewRecorder()
	h.GetSession(w, testutil.MakeRequest("GET", "/session", nil, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var raw map[string]interface{}
	testutil.AssertJSON(t, w, &raw)
	if raw["isAuthenticated"] != true {
		t.Errorf("Expected isAuthenticated true, got %v", raw["isAuthenticated"])
	}
	if _, ok := raw["authToken"]; ok {
		t.Error("Expected auth token to be omitted")
	}
}

func TestLogout(t *testing.T) {
	e := testutil.NewEnv(t)
	e.Login(t)
	events := e.Subscribe(t)
	h := NewSessionHandler(testServices(e))

	w := httptest.NewRecorder()
	h.Logout(w, testutil.MakeRequest("POST", "/auth/logout?silent=true", nil, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var state models.AuthState
	testutil.AssertJSON(t, w, &state)
	if state.IsAuthenticated {
		t.Error("Expected logged out state")
	}
	if !state.HasCompletedOnboarding {
		t.Error("Expected onboarding flag to survive logout")
	}
	if !hasMessage(testutil.Drain(events), models.MsgUserLoggedOut) {
		t.Error("Expected USER_LOGGED_OUT broadcast")
	}
	if len(e.Notes.Messages()) != 0 {
		t.Errorf("Expected silent logout, got notifications %v", e.Notes.Messages())
	}
}

func TestCompleteOnboarding(t *testing.T) {
	e := testutil.NewEnv(t)
	h := NewSessionHandler(testServices(e))

	w := httptest.NewRecorder()
	h.CompleteOnboarding(w, testutil.MakeRequest("POST", "/onboarding/complete", nil, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	if !e.Auth.Get().HasCompletedOnboarding {
		t.Error("Expected onboarding to be complete")
	}
}

func TestSetActivation(t *testing.T) {
	e := testutil.NewEnv(t)
	e.Login(t)
	events := e.Subscribe(t)
	h := NewSessionHandler(testServices(e))

	w := httptest.NewRecorder()
	h.SetActivation(w, testutil.MakeRequest("POST", "/activation", models.ActivationRequest{IsActivated: false}, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ActivationResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.IsActivated {
		t.Error("Expected extension to be deactivated")
	}
	if !hasMessage(testutil.Drain(events), models.MsgExtensionDeactivated) {
		t.Error("Expected EXTENSION_DEACTIVATED broadcast")
	}
	if u := e.Auth.User(); u == nil || u.ExtensionMode == nil || *u.ExtensionMode {
		t.Errorf("Expected user.extensionMode false, got %+v", u)
	}
}

func TestDisallowedSites(t *testing.T) {
	e := testutil.NewEnv(t)
	e.Login(t)
	h := NewSessionHandler(testServices(e))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /disallowed", h.GetDisallowed)
	mux.HandleFunc("POST /disallowed", h.AddDisallowed)
	mux.HandleFunc("DELETE /disallowed/{site}", h.RemoveDisallowed)

	do := func(req *http.Request) (*httptest.ResponseRecorder, models.DisallowedResponse) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		var resp models.DisallowedResponse
		if w.Code == http.StatusOK {
			testutil.AssertJSON(t, w, &resp)
		}
		return w, resp
	}

	w, resp := do(testutil.MakeRequest("GET", "/disallowed", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if resp.DisallowedList == nil || len(resp.DisallowedList) != 0 {
		t.Errorf("Expected empty list, got %v", resp.DisallowedList)
	}

	w, resp = do(testutil.MakeRequest("POST", "/disallowed", models.SiteRequest{Site: " Example.com "}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if !resp.Changed || len(resp.DisallowedList) != 1 || resp.DisallowedList[0] != "example.com" {
		t.Errorf("Expected [example.com] changed, got %+v", resp)
	}

	w, resp = do(testutil.MakeRequest("POST", "/disallowed", models.SiteRequest{Site: "example.com"}, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if resp.Changed {
		t.Error("Expected duplicate add to leave the list unchanged")
	}

	w, _ = do(testutil.MakeRequest("POST", "/disallowed", models.SiteRequest{Site: ""}, nil))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w, resp = do(testutil.MakeRequest("DELETE", "/disallowed/example.com", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if !resp.Changed || len(resp.DisallowedList) != 0 {
		t.Errorf("Expected empty list after removal, got %+v", resp)
	}

	if u := e.Auth.User(); u == nil || len(u.DisallowedList) != 0 {
		t.Errorf("Expected stored list to be empty, got %+v", u)
	}
}

func TestToggleActivation(t *testing.T) {
	e := testutil.NewEnv(t)
	e.Login(t)
	h := NewSessionHandler(testServices(e))

	for _, want := range []bool{false, true} {
		w := httptest.NewRecorder()
		h.ToggleActivation(w, testutil.MakeRequest("POST", "/activation/toggle", nil, nil))

		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.ActivationResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.IsActivated != want {
			t.Errorf("Expected isActivated %v after toggle, got %v", want, resp.IsActivated)
		}
	}
}

func TestResetRecords(t *testing.T) {
	e := testutil.NewEnv(t)
	e.Login(t)
	e.Records.IncrementRequest()
	e.Records.IncrementFailure()
	h := NewSessionHandler(testServices(e))

	w := httptest.NewRecorder()
	h.ResetRecords(w, testutil.MakeRequest("POST", "/records/reset", nil, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	var records models.UserRecords
	testutil.AssertJSON(t, w, &records)
	if records.RequestCount != 0 || records.FailedRequestCount != 0 {
		t.Errorf("Expected zeroed counters, got %+v", records)
	}

	e.Clock.Advance(stores.RecordsWriteDelay)
	if u := e.Auth.User(); u == nil || u.Records == nil || u.Records.RequestCount != 0 {
		t.Errorf("Expected reset counters on the cached user, got %+v", u)
	}
}

func TestSessionAfterForcedLogout(t *testing.T) {
	e := testutil.NewEnv(t)
	e.Login(t)
	e.Scheduler.Start(context.Background())
	h := NewSessionHandler(testServices(e))

	banned := e.API.User()
	banned.Status = models.StatusBanned
	e.API.SetUser(banned)

	if _, err := e.Scheduler.CheckUser(context.Background()); err == nil {
		t.Fatal("Expected CheckUser to end the session")
	}
	testutil.Eventually(t, func() bool { return !e.Auth.Get().IsAuthenticated },
		"Auth store still authenticated after forced logout")

	if tok := e.Auth.Get().AuthToken; tok != "" {
		t.Errorf("Expected token to be dropped, got '%s'", tok)
	}
	testutil.Eventually(t, func() bool { return !e.Scheduler.Running() },
		"Expected scheduler to stop after forced logout")

	w := httptest.NewRecorder()
	h.GetSession(w, testutil.MakeRequest("GET", "/session", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var state models.AuthState
	testutil.AssertJSON(t, w, &state)
	if state.IsAuthenticated {
		t.Error("Expected GET /session to report logged out")
	}
}

func TestSessionFollowsPlanChange(t *testing.T) {
	e := testutil.NewEnv(t)
	e.Login(t)

	user := e.API.User()
	user.Plan = models.PlanFree
	user.DisallowedList = []string{"news.example.com"}
	e.API.SetUser(user)

	changed, err := e.Scheduler.CheckUser(context.Background())
	if err != nil || !changed {
		t.Fatalf("Expected CheckUser to update the user, got changed=%v err=%v", changed, err)
	}
	testutil.Eventually(t, func() bool {
		u := e.Auth.User()
		return u != nil && u.Plan == models.PlanFree
	}, "Auth store did not pick up the plan change")
	testutil.Eventually(t, func() bool { return len(e.Disallowed.List()) == 1 },
		"Disallowed list was not reloaded")

	if !e.Auth.Get().IsAuthenticated {
		t.Error("Expected session to stay authenticated")
	}
}
