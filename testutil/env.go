// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/danielhkuo/highlightly/apiclient"
	"github.com/danielhkuo/highlightly/db"
	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/notify"
	"github.com/danielhkuo/highlightly/scheduler"
	"github.com/danielhkuo/highlightly/session"
	"github.com/danielhkuo/highlightly/storage"
	"github.com/danielhkuo/highlightly/stores"
	"github.com/danielhkuo/highlightly/timer"
)

// Env is the whole background service wired against an in-memory database,
// a fake API and a virtual clock.
type Env struct {
	DB     *sql.DB
	API    *FakeAPI
	Client *apiclient.Client
	Clock  *timer.Fake
	Bus    *storage.Bus
	Notes  *notify.Recorder
	Sync   *storage.Area
	Local  *storage.Area
	WordDB *db.WordStore

	Auth       *stores.AuthStore
	Activation *stores.ActivationStore
	Disallowed *stores.DisallowedStore
	Records    *stores.RecordsStore
	Words      *stores.WordsStore
	Scheduler  *scheduler.Scheduler
}

// NewEnv builds a logged-out environment.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	conn := SetupTestDB(t)
	kv := db.NewKV(conn)
	e := &Env{
		DB:     conn,
		API:    NewFakeAPI(t),
		Clock:  timer.NewFake(time.UnixMilli(1_700_000_000_000)),
		Bus:    storage.NewBus(),
		Notes:  &notify.Recorder{},
		Sync:   storage.NewArea(kv, storage.AreaSync),
		Local:  storage.NewArea(kv, storage.AreaLocal),
		WordDB: db.NewWordStore(conn),
	}
	e.Client = apiclient.New(e.API.URL())

	e.Scheduler = scheduler.New(scheduler.DefaultConfig(), scheduler.Deps{
		Clock:    e.Clock,
		Sync:     e.Sync,
		Local:    e.Local,
		Words:    e.WordDB,
		API:      e.Client,
		Bus:      e.Bus,
		Notifier: e.Notes,
	})
	e.Auth = stores.NewAuthStore(e.Sync, e.Client, e.Bus, e.Notes, stores.AuthHooks{
		OnLogin:  func(context.Context) { e.Scheduler.Start(ctx) },
		OnLogout: func(context.Context) { e.Scheduler.Stop() },
	})
	e.Activation = stores.NewActivationStore(e.Auth, e.Bus, e.Notes)
	e.Disallowed = stores.NewDisallowedStore(e.Auth, e.Bus)
	e.Records = stores.NewRecordsStore(ctx, e.Auth, e.Clock)
	e.Words = stores.NewWordsStore(e.WordDB, e.Notes)
	t.Cleanup(e.Scheduler.Stop)

	events, stop := e.Bus.Subscribe(64)
	t.Cleanup(stop)
	go e.Auth.Listen(ctx, events, e.Activation, e.Disallowed)

	return e
}

// Login seeds a stored session for the fake API's user and loads every store.
func (e *Env) Login(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	user := e.API.User()
	err := e.Sync.Set(ctx, map[string]any{
		session.KeyAuthToken:  TestToken,
		session.KeyUserID:     user.UserID,
		session.KeyUser:       &user,
		session.KeyOnboarding: true,
	})
	if err != nil {
		t.Fatalf("Failed to seed session: %v", err)
	}

	if err := e.Auth.Init(ctx); err != nil {
		t.Fatalf("Failed to init auth store: %v", err)
	}
	e.Activation.Init()
	e.Disallowed.Init()
	e.Records.Init()
	if err := e.Words.Load(ctx); err != nil {
		t.Fatalf("Failed to load words: %v", err)
	}
}

// Subscribe returns a channel of broadcasts, closed at test end.
func (e *Env) Subscribe(t *testing.T) <-chan models.Message {
	t.Helper()
	ch, cancel := e.Bus.Subscribe(64)
	t.Cleanup(cancel)
	return ch
}

// Eventually fails the test unless cond holds within two seconds.
func Eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Drain returns the broadcasts already queued on ch.
func Drain(ch <-chan models.Message) []models.Message {
	var out []models.Message
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, msg)
		default:
			return out
		}
	}
}
