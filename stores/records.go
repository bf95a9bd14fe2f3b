// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stores

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/timer"
)

// RecordsWriteDelay is how long record updates are buffered before they
// are written to the cached user.
const RecordsWriteDelay = 300 * time.Millisecond

// RecordsStore holds the usage counters. Updates are published at once and
// written through a single buffered write: the first update arms the timer
// and later updates replace the buffer.
type RecordsStore struct {
	*Value[models.UserRecords]

	auth  *AuthStore
	clock timer.Clock
	ctx   context.Context

	mu       sync.Mutex
	pending  timer.Timer
	buffered *models.UserRecords
}

func NewRecordsStore(ctx context.Context, auth *AuthStore, clock timer.Clock) *RecordsStore {
	return &RecordsStore{
		Value: NewValue(models.UserRecords{}),
		auth:  auth,
		clock: clock,
		ctx:   ctx,
	}
}

func (s *RecordsStore) stamp() string {
	return s.clock.Now().Format(time.RFC3339)
}

// Init reads the counters from the cached user, defaulting to zero.
func (s *RecordsStore) Init() {
	r := models.UserRecords{LastRequestDate: s.stamp()}
	if u := s.auth.User(); u != nil && u.Records != nil {
		r = *u.Records
	}
	s.Set(r)
	s.persist(r)
}

func (s *RecordsStore) IncrementRequest() {
	s.update(func(r models.UserRecords) models.UserRecords {
		r.RequestCount++
		r.LastRequestDate = s.stamp()
		return r
	})
}

func (s *RecordsStore) IncrementSuccess() {
	s.update(func(r models.UserRecords) models.UserRecords {
		r.SuccessfulRequestCount++
		r.LastRequestDate = s.stamp()
		return r
	})
}

func (s *RecordsStore) IncrementFailure() {
	s.update(func(r models.UserRecords) models.UserRecords {
		r.FailedRequestCount++
		r.LastRequestDate = s.stamp()
		return r
	})
}

// SetLastRequestDate sets the date; an empty date means now.
func (s *RecordsStore) SetLastRequestDate(date string) {
	if date == "" {
		date = s.stamp()
	}
	s.update(func(r models.UserRecords) models.UserRecords {
		r.LastRequestDate = date
		return r
	})
}

// Reset zeroes the counters.
func (s *RecordsStore) Reset() {
	s.update(func(models.UserRecords) models.UserRecords {
		return models.UserRecords{LastRequestDate: s.stamp()}
	})
}

func (s *RecordsStore) update(fn func(models.UserRecords) models.UserRecords) {
	r := s.Update(fn)
	s.persist(r)
}

func (s *RecordsStore) persist(r models.UserRecords) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffered = &r
	if s.pending != nil {
		return
	}
	s.pending = s.clock.AfterFunc(RecordsWriteDelay, func() {
		if err := s.Flush(s.ctx); err != nil {
			slog.Error("records: buffered write failed", "error", err)
		}
	})
}

// Flush writes the buffered counters now.
func (s *RecordsStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	buffered := s.buffered
	s.buffered = nil
	s.mu.Unlock()

	if buffered == nil {
		return nil
	}
	_, err := s.auth.UpdateUser(ctx, func(u *models.User) {
		r := *buffered
		u.Records = &r
	})
	return err
}
