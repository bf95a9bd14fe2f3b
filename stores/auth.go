// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/notify"
	"github.com/danielhkuo/highlightly/session"
	"github.com/danielhkuo/highlightly/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUser        = errors.New("login returned an invalid user")
)

// AuthAPI is the part of the remote API the auth store uses.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	GetUser(ctx context.Context, token, userID string) (*models.User, error)
}

// AuthHooks are called after a successful login and after a logout.
type AuthHooks struct {
	OnLogin  func(ctx context.Context)
	OnLogout func(ctx context.Context)
}

// AuthStore holds the session state.
type AuthStore struct {
	*Value[models.AuthState]

	store    storage.Store
	api      AuthAPI
	bus      storage.Broadcaster
	notifier notify.Notifier
	hooks    AuthHooks

	// serializes read-modify-write of the cached user
	userMu sync.Mutex
}

func NewAuthStore(store storage.Store, api AuthAPI, bus storage.Broadcaster, notifier notify.Notifier, hooks AuthHooks) *AuthStore {
	return &AuthStore{
		Value:    NewValue(models.AuthState{}),
		store:    store,
		api:      api,
		bus:      bus,
		notifier: notifier,
		hooks:    hooks,
	}
}

func (a *AuthStore) sessionDeps() session.Deps {
	return session.Deps{Store: a.store, Bus: a.bus, Notifier: a.notifier}
}

// Init loads the stored session and refreshes the user from the API.
// When the API is unreachable the cached user is kept.
func (a *AuthStore) Init(ctx context.Context) error {
	state, err := session.LoadState(ctx, a.store)
	if err != nil {
		a.Set(models.AuthState{})
		return fmt.Errorf("load session: %w", err)
	}
	if !state.IsAuthenticated {
		a.Set(state)
		return nil
	}

	fresh, err := a.api.GetUser(ctx, state.AuthToken, state.UserID)
	if err != nil {
		if state.User != nil {
			slog.Warn("auth: user refresh failed, using cached user", "error", err)
			a.Set(state)
			return nil
		}
		return a.endSession(ctx, models.ReasonFetchUserFailed, false, state.HasCompletedOnboarding)
	}
	if !session.IsValidUser(fresh) {
		return a.endSession(ctx, models.ReasonInvalidUserStructure, true, state.HasCompletedOnboarding)
	}

	user := session.MergeLocal(state.User, fresh)
	if err := a.store.Set(ctx, map[string]any{session.KeyUser: user}); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	state.User = user
	a.Set(state)
	return nil
}

func (a *AuthStore) endSession(ctx context.Context, reason string, silent, onboarded bool) error {
	if err := session.Terminate(ctx, a.sessionDeps(), reason, session.Options{PreserveUser: true, Silent: silent}); err != nil {
		slog.Error("auth: logout incomplete", "error", err)
	}
	a.Set(models.AuthState{HasCompletedOnboarding: onboarded})
	return nil
}

// Login authenticates with the API and persists the session. Locally owned
// user fields kept from a previous session are carried over.
func (a *AuthStore) Login(ctx context.Context, email, password string) (models.AuthState, error) {
	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		if session.IsAuthError(err) {
			return models.AuthState{}, ErrInvalidCredentials
		}
		return models.AuthState{}, fmt.Errorf("login: %w", err)
	}
	if !session.IsValidUser(resp.User) {
		return models.AuthState{}, ErrInvalidUser
	}
	userID := resp.UserID
	if userID == "" {
		userID = resp.User.UserID
	}

	a.userMu.Lock()
	prev, err := session.LoadState(ctx, a.store)
	if err != nil {
		a.userMu.Unlock()
		return models.AuthState{}, fmt.Errorf("load session: %w", err)
	}

	user := session.MergeLocal(prev.User, resp.User)
	err = a.store.Set(ctx, map[string]any{
		session.KeyAuthToken: resp.Token,
		session.KeyUserID:    userID,
		session.KeyUser:      user,
	})
	a.userMu.Unlock()
	if err != nil {
		return models.AuthState{}, fmt.Errorf("store session: %w", err)
	}

	state := models.AuthState{
		IsAuthenticated:        true,
		UserID:                 userID,
		AuthToken:              resp.Token,
		User:                   user,
		HasCompletedOnboarding: prev.HasCompletedOnboarding,
	}
	a.Set(state)
	a.bus.Broadcast(models.Message{Type: models.MsgUserUpdated, User: user})

	slog.Info("auth: logged in", "user_id", userID)
	if a.hooks.OnLogin != nil {
		a.hooks.OnLogin(ctx)
	}
	return state, nil
}

// Logout ends the session, keeping the locally owned user fields.
func (a *AuthStore) Logout(ctx context.Context, silent bool) error {
	a.userMu.Lock()
	err := session.Terminate(ctx, a.sessionDeps(), models.ReasonManual, session.Options{PreserveUser: true, Silent: silent})
	a.userMu.Unlock()
	if err != nil {
		return err
	}

	state, err := session.LoadState(ctx, a.store)
	if err != nil {
		state = models.AuthState{HasCompletedOnboarding: a.Get().HasCompletedOnboarding}
	}
	a.Set(state)

	if a.hooks.OnLogout != nil {
		a.hooks.OnLogout(ctx)
	}
	return nil
}

// CompleteOnboarding sets the onboarding flag.
func (a *AuthStore) CompleteOnboarding(ctx context.Context) error {
	if err := a.store.Set(ctx, map[string]any{session.KeyOnboarding: true}); err != nil {
		return err
	}
	a.Update(func(s models.AuthState) models.AuthState {
		s.HasCompletedOnboarding = true
		return s
	})
	return nil
}

// UpdateUser applies patch to a copy of the cached user, persists it and
// publishes it. A missing user is created empty first.
func (a *AuthStore) UpdateUser(ctx context.Context, patch func(u *models.User)) (*models.User, error) {
	a.userMu.Lock()
	defer a.userMu.Unlock()

	items, err := a.store.Get(ctx, session.KeyUser)
	if err != nil {
		return nil, err
	}
	var user *models.User
	if _, err := storage.Decode(items, session.KeyUser, &user); err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{}
	}
	patch(user)

	if err := a.store.Set(ctx, map[string]any{session.KeyUser: user}); err != nil {
		return nil, err
	}
	a.Update(func(s models.AuthState) models.AuthState {
		s.User = user.Clone()
		return s
	})
	return user.Clone(), nil
}

// User returns a copy of the current user.
func (a *AuthStore) User() *models.User {
	return a.Get().User.Clone()
}

// Reloader is a store derived from the cached user.
type Reloader interface {
	Init()
}

// HandleMessage reloads the session after a broadcast that changed the
// stored user or ended the session, then reloads the dependent stores.
// Losing the session runs the OnLogout hook.
func (a *AuthStore) HandleMessage(ctx context.Context, msg models.Message, dependents ...Reloader) {
	switch msg.Type {
	case models.MsgUserLoggedOut, models.MsgUserUpdated:
	default:
		return
	}

	a.userMu.Lock()
	state, err := session.LoadState(ctx, a.store)
	a.userMu.Unlock()
	if err != nil {
		slog.Error("auth: reload session failed", "message", msg.Type, "error", err)
		return
	}

	wasAuthenticated := a.Get().IsAuthenticated
	a.Set(state)
	for _, d := range dependents {
		d.Init()
	}

	if wasAuthenticated && !state.IsAuthenticated {
		slog.Info("auth: session ended elsewhere", "message", msg.Type)
		if a.hooks.OnLogout != nil {
			a.hooks.OnLogout(ctx)
		}
	}
}

// Listen applies broadcasts from ch until ctx is done or ch is closed.
func (a *AuthStore) Listen(ctx context.Context, ch <-chan models.Message, dependents ...Reloader) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			a.HandleMessage(ctx, msg, dependents...)
		}
	}
}
