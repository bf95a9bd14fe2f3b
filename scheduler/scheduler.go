// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/notify"
	"github.com/danielhkuo/highlightly/session"
	"github.com/danielhkuo/highlightly/storage"
	"github.com/danielhkuo/highlightly/timer"
)

// Defaults
const (
	SyncInterval      = 5 * time.Minute
	UserCheckInterval = 10 * time.Minute
	InitialDelay      = 8 * time.Second
	MaxRetryAttempts  = 3
)

var (
	ErrTaskBusy         = errors.New("task already running")
	ErrOffline          = errors.New("offline")
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionEnded is returned by a task that forced a logout.
	ErrSessionEnded = errors.New("session ended")
	// ErrSyncRejected is returned when the API answers a sync without success.
	ErrSyncRejected = errors.New("server returned unsuccessful status")
)

// WordStore is the part of the word database the sync task uses.
type WordStore interface {
	Unsynced(ctx context.Context) ([]models.SavedWord, error)
	MarkSynced(ctx context.Context, ids ...string) (int, error)
}

// API is the part of the remote API the tasks use.
type API interface {
	SyncWords(ctx context.Context, token string, words []models.SavedWord) (*models.SyncWordsResponse, error)
	GetUser(ctx context.Context, token, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, token string, user *models.User) error
}

// Config holds the task cadence.
type Config struct {
	SyncInterval      time.Duration
	UserCheckInterval time.Duration
	InitialDelay      time.Duration
	MaxRetryAttempts  int
}

func DefaultConfig() Config {
	return Config{
		SyncInterval:      SyncInterval,
		UserCheckInterval: UserCheckInterval,
		InitialDelay:      InitialDelay,
		MaxRetryAttempts:  MaxRetryAttempts,
	}
}

// Deps are the scheduler's collaborators. Online defaults to always true
// and Clock to the system clock.
type Deps struct {
	Clock    timer.Clock
	Sync     storage.Store
	Local    storage.Store
	Words    WordStore
	API      API
	Bus      storage.Broadcaster
	Notifier notify.Notifier
	Online   func() bool
}

// Scheduler owns the task timers and busy flags.
type Scheduler struct {
	cfg Config
	d   Deps

	syncing  atomic.Bool
	checking atomic.Bool
	pushing  atomic.Bool

	mu       sync.Mutex
	ctx      context.Context
	syncTick *timer.Interval
	userTick *timer.Interval
	initial  timer.Timer
}

func New(cfg Config, d Deps) *Scheduler {
	if d.Clock == nil {
		d.Clock = timer.System()
	}
	if d.Online == nil {
		d.Online = func() bool { return true }
	}
	if cfg.MaxRetryAttempts <= 0 {
		cfg.MaxRetryAttempts = MaxRetryAttempts
	}
	return &Scheduler{cfg: cfg, d: d, ctx: context.Background()}
}

// Start arms the intervals and the delayed initial run. Tasks fired by
// timers use ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.ctx = ctx

	slog.Info("scheduler: starting background tasks",
		"sync_interval", s.cfg.SyncInterval,
		"user_check_interval", s.cfg.UserCheckInterval,
		"initial_delay", s.cfg.InitialDelay)

	s.syncTick = timer.Every(s.d.Clock, s.cfg.SyncInterval, func() {
		s.run(s.taskContext(), "sync", s.syncTask)
	})
	s.userTick = timer.Every(s.d.Clock, s.cfg.UserCheckInterval, func() {
		s.run(s.taskContext(), "userCheck", s.checkTask)
	})
	s.initial = s.d.Clock.AfterFunc(s.cfg.InitialDelay, func() {
		slog.Info("scheduler: running initial checks")
		s.OnOnline(s.taskContext())
	})
}

// Stop cancels the timers. A task already running is not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Running reports whether the intervals are armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncTick != nil
}

func (s *Scheduler) stopLocked() {
	if s.syncTick != nil {
		s.syncTick.Stop()
		s.syncTick = nil
	}
	if s.userTick != nil {
		s.userTick.Stop()
		s.userTick = nil
	}
	if s.initial != nil {
		s.initial.Stop()
		s.initial = nil
	}
}

func (s *Scheduler) taskContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) syncTask(ctx context.Context) error {
	_, err := s.SyncWords(ctx)
	return err
}

func (s *Scheduler) checkTask(ctx context.Context) error {
	_, err := s.CheckUser(ctx)
	return err
}

// run executes a triggered task and logs unexpected failures.
func (s *Scheduler) run(ctx context.Context, name string, task func(ctx context.Context) error) {
	err := task(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrTaskBusy), errors.Is(err, ErrOffline), errors.Is(err, ErrNotAuthenticated):
		slog.Debug("scheduler: task skipped", "task", name, "reason", err)
	case errors.Is(err, ErrSessionEnded):
		slog.Warn("scheduler: task ended the session", "task", name, "reason", err)
	default:
		slog.Error("scheduler: task failed", "task", name, "error", err)
	}
}

// OnOnline runs the user check and then the word sync.
func (s *Scheduler) OnOnline(ctx context.Context) {
	s.run(ctx, "userCheck", s.checkTask)
	s.run(ctx, "sync", s.syncTask)
}

// ForceLogout stops the timers and terminates the session.
func (s *Scheduler) ForceLogout(ctx context.Context, reason string) error {
	s.Stop()
	return session.Terminate(ctx, session.Deps{
		Store:    s.d.Sync,
		Bus:      s.d.Bus,
		Notifier: s.d.Notifier,
	}, reason, session.Options{})
}

// SyncState returns the local sync bookkeeping.
func (s *Scheduler) SyncState(ctx context.Context) (models.SyncState, error) {
	var st models.SyncState
	items, err := s.d.Local.Get(ctx, session.KeyLastSync, session.KeyFailedSyncs)
	if err != nil {
		return st, err
	}
	if _, err := storage.Decode(items, session.KeyLastSync, &st.LastSyncTime); err != nil {
		return st, err
	}
	if _, err := storage.Decode(items, session.KeyFailedSyncs, &st.FailedSyncAttempts); err != nil {
		return st, err
	}
	return st, nil
}

// acquire takes a busy flag. The returned func releases it.
func (s *Scheduler) acquire(flag *atomic.Bool) (func(), error) {
	if !s.d.Online() {
		return nil, ErrOffline
	}
	if !flag.CompareAndSwap(false, true) {
		return nil, ErrTaskBusy
	}
	return func() { flag.Store(false) }, nil
}
