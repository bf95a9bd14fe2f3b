// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stores

import (
	"context"
	"log/slog"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/notify"
	"github.com/danielhkuo/highlightly/storage"
)

// ActivationStore holds the extension mode. An unset mode counts as active.
type ActivationStore struct {
	*Value[bool]

	auth     *AuthStore
	bus      storage.Broadcaster
	notifier notify.Notifier
}

func NewActivationStore(auth *AuthStore, bus storage.Broadcaster, notifier notify.Notifier) *ActivationStore {
	return &ActivationStore{Value: NewValue(true), auth: auth, bus: bus, notifier: notifier}
}

// Init reads the mode from the cached user.
func (s *ActivationStore) Init() {
	s.Set(modeOf(s.auth.User()))
}

func modeOf(u *models.User) bool {
	return u == nil || u.ExtensionMode == nil || *u.ExtensionMode
}

func (s *ActivationStore) Activate(ctx context.Context) error   { return s.SetActivation(ctx, true) }
func (s *ActivationStore) Deactivate(ctx context.Context) error { return s.SetActivation(ctx, false) }
func (s *ActivationStore) Toggle(ctx context.Context) error     { return s.SetActivation(ctx, !s.Get()) }

// SetActivation persists the mode, publishes it, broadcasts the change and
// notifies. Setting the current mode again is a no-op.
func (s *ActivationStore) SetActivation(ctx context.Context, on bool) error {
	if s.Get() == on {
		return nil
	}

	_, err := s.auth.UpdateUser(ctx, func(u *models.User) {
		u.ExtensionMode = &on
	})
	if err != nil {
		slog.Error("activation: failed to store mode", "error", err)
		return err
	}
	s.Set(on)

	msg := models.Message{Type: models.MsgExtensionDeactivated, IsActivated: &on}
	notice := models.NoticeDeactivated
	if on {
		msg.Type = models.MsgExtensionActivated
		notice = models.NoticeActivated
	}
	s.bus.Broadcast(msg)
	s.notifier.Notify(notice)

	slog.Info("activation changed", "active", on)
	return nil
}
