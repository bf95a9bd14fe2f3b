// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/session"
)

// SyncWords uploads every unsynced word in one batch and returns how many
// records were marked synced.
func (s *Scheduler) SyncWords(ctx context.Context) (int, error) {
	release, err := s.acquire(&s.syncing)
	if err != nil {
		return 0, err
	}
	defer release()

	auth, err := session.LoadAuth(ctx, s.d.Sync)
	if err != nil {
		return 0, fmt.Errorf("load auth: %w", err)
	}
	if auth.AuthToken == "" {
		return 0, ErrNotAuthenticated
	}

	words, err := s.d.Words.Unsynced(ctx)
	if err != nil {
		return 0, fmt.Errorf("load unsynced words: %w", err)
	}
	if len(words) == 0 {
		slog.Debug("sync: no words to sync")
		return 0, nil
	}

	slog.Info("sync: syncing words", "count", len(words))

	resp, err := s.d.API.SyncWords(ctx, auth.AuthToken, words)
	if err == nil && !resp.Success {
		err = ErrSyncRejected
		if resp.Error != "" {
			err = fmt.Errorf("%w: %s", ErrSyncRejected, resp.Error)
		}
	}
	if err != nil {
		if session.IsAuthError(err) {
			return 0, s.endSession(ctx, session.LogoutReasonFor(err))
		}
		s.recordSyncFailure(ctx)
		return 0, fmt.Errorf("sync words: %w", err)
	}

	ids := make([]string, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	marked, err := s.d.Words.MarkSynced(ctx, ids...)
	if err != nil {
		// The server has the words; they are sent again next round.
		s.recordSyncFailure(ctx)
		return marked, fmt.Errorf("mark synced: %w", err)
	}

	err = s.d.Local.Set(ctx, map[string]any{
		session.KeyLastSync:    s.d.Clock.Now().UnixMilli(),
		session.KeyFailedSyncs: 0,
	})
	if err != nil {
		slog.Error("sync: failed to record sync state", "error", err)
	}

	slog.Info("sync: words synced", "count", marked)
	return marked, nil
}

// recordSyncFailure increments the persisted failure counter and notifies
// once it reaches the retry limit.
func (s *Scheduler) recordSyncFailure(ctx context.Context) {
	st, err := s.SyncState(ctx)
	if err != nil {
		slog.Error("sync: failed to read sync state", "error", err)
	}
	attempts := st.FailedSyncAttempts + 1

	if err := s.d.Local.Set(ctx, map[string]any{session.KeyFailedSyncs: attempts}); err != nil {
		slog.Error("sync: failed to record failure", "error", err)
	}

	slog.Warn("sync: attempt failed", "failed_attempts", attempts)
	if attempts >= s.cfg.MaxRetryAttempts {
		s.d.Notifier.Notify(models.NoticeSyncFailed)
	}
}

// CheckUser compares the canonical user with the cached one. It reports
// whether the cache was updated.
func (s *Scheduler) CheckUser(ctx context.Context) (bool, error) {
	release, err := s.acquire(&s.checking)
	if err != nil {
		return false, err
	}
	defer release()

	auth, err := session.LoadAuth(ctx, s.d.Sync)
	if err != nil {
		return false, fmt.Errorf("load auth: %w", err)
	}
	if auth.AuthToken == "" || auth.UserID == "" {
		return false, ErrNotAuthenticated
	}

	fresh, err := s.d.API.GetUser(ctx, auth.AuthToken, auth.UserID)
	if err != nil {
		if session.IsAuthError(err) || session.IsNotFound(err) {
			return false, s.endSession(ctx, session.LogoutReasonFor(err))
		}
		return false, fmt.Errorf("get user: %w", err)
	}

	if !session.IsValidUser(fresh) {
		slog.Error("userCheck: invalid user data received", "user_id", auth.UserID)
		return false, s.endSession(ctx, models.ReasonInvalidUserData)
	}

	if session.IsBlockedStatus(fresh.Status) {
		return false, s.endSession(ctx, session.AccountStatusReason(fresh.Status))
	}

	if !session.MonitoredFieldsChanged(auth.User, fresh) {
		slog.Debug("userCheck: user unchanged", "user_id", auth.UserID)
		return false, nil
	}

	updated := session.MergeLocal(auth.User, fresh)
	if err := s.d.Sync.Set(ctx, map[string]any{session.KeyUser: updated}); err != nil {
		return false, fmt.Errorf("store user: %w", err)
	}
	s.d.Bus.Broadcast(models.Message{Type: models.MsgUserUpdated, User: updated})
	s.d.Notifier.Notify(models.NoticeUserUpdated)

	slog.Info("userCheck: user updated", "user_id", auth.UserID, "plan", updated.Plan)
	return true, nil
}

// SyncUserToBackend pushes the cached user to the API.
func (s *Scheduler) SyncUserToBackend(ctx context.Context) error {
	release, err := s.acquire(&s.pushing)
	if err != nil {
		return err
	}
	defer release()

	auth, err := session.LoadAuth(ctx, s.d.Sync)
	if err != nil {
		return fmt.Errorf("load auth: %w", err)
	}
	if auth.AuthToken == "" || auth.UserID == "" || auth.User == nil {
		return ErrNotAuthenticated
	}

	user := auth.User.Clone()
	user.UserID = auth.UserID

	if err := s.d.API.UpdateUser(ctx, auth.AuthToken, user); err != nil {
		if session.IsAuthError(err) {
			return s.endSession(ctx, session.LogoutReasonFor(err))
		}
		return fmt.Errorf("update user: %w", err)
	}

	slog.Info("userSync: user pushed to backend", "user_id", auth.UserID)
	return nil
}

func (s *Scheduler) endSession(ctx context.Context, reason string) error {
	if err := s.ForceLogout(ctx, reason); err != nil {
		slog.Error("forced logout incomplete", "error", err)
	}
	return fmt.Errorf("%w: %s", ErrSessionEnded, reason)
}

// HandleMessage runs the task requested by an on-demand message.
func (s *Scheduler) HandleMessage(ctx context.Context, msg models.Message) models.MessageResponse {
	var err error
	switch msg.Type {
	case models.MsgSyncWords:
		_, err = s.SyncWords(ctx)
	case models.MsgCheckUserStatus:
		_, err = s.CheckUser(ctx)
	case models.MsgSyncUserToBackend:
		err = s.SyncUserToBackend(ctx)
	default:
		return models.MessageResponse{Success: false, Error: "Unknown message type"}
	}

	switch {
	case err == nil:
		return models.MessageResponse{Success: true}
	case errors.Is(err, ErrTaskBusy), errors.Is(err, ErrOffline), errors.Is(err, ErrNotAuthenticated):
		return models.MessageResponse{Success: true, Skipped: err.Error()}
	default:
		slog.Error("scheduler: message task failed", "type", msg.Type, "error", err)
		return models.MessageResponse{Success: false, Error: err.Error()}
	}
}
