// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stores

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/storage"
)

var ErrEmptySite = errors.New("site must be non-empty")

// DisallowedStore holds the hosts where the overlay never appears.
type DisallowedStore struct {
	*Value[[]string]

	auth *AuthStore
	bus  storage.Broadcaster
}

func NewDisallowedStore(auth *AuthStore, bus storage.Broadcaster) *DisallowedStore {
	return &DisallowedStore{Value: NewValue([]string{}), auth: auth, bus: bus}
}

// Init reads the list from the cached user.
func (s *DisallowedStore) Init() {
	list := []string{}
	if u := s.auth.User(); u != nil && u.DisallowedList != nil {
		list = u.DisallowedList
	}
	s.Set(list)
}

// List returns a copy of the current list.
func (s *DisallowedStore) List() []string {
	return slices.Clone(s.Get())
}

// AddSite appends site unless present. It reports whether the list changed.
func (s *DisallowedStore) AddSite(ctx context.Context, site string) (bool, error) {
	site = normalizeSite(site)
	if site == "" {
		return false, ErrEmptySite
	}
	current := s.Get()
	if slices.Contains(current, site) {
		return false, nil
	}
	return true, s.replace(ctx, append(slices.Clone(current), site))
}

// RemoveSite drops site if present. It reports whether the list changed.
func (s *DisallowedStore) RemoveSite(ctx context.Context, site string) (bool, error) {
	site = normalizeSite(site)
	current := s.Get()
	if !slices.Contains(current, site) {
		return false, nil
	}
	next := slices.DeleteFunc(slices.Clone(current), func(v string) bool { return v == site })
	return true, s.replace(ctx, next)
}

func (s *DisallowedStore) replace(ctx context.Context, list []string) error {
	_, err := s.auth.UpdateUser(ctx, func(u *models.User) {
		u.DisallowedList = slices.Clone(list)
	})
	if err != nil {
		return err
	}
	s.Set(list)
	s.bus.Broadcast(models.Message{Type: models.MsgDisallowedListUpdated, DisallowedList: slices.Clone(list)})
	return nil
}

func normalizeSite(site string) string {
	return strings.ToLower(strings.TrimSpace(site))
}
