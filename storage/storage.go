// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Storage areas
const (
	AreaSync  = "sync"
	AreaLocal = "local"
)

// Store is a keyed get/set/remove contract. Missing keys are absent from
// Get results rather than an error.
type Store interface {
	Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error)
	Set(ctx context.Context, items map[string]any) error
	Remove(ctx context.Context, keys ...string) error
}

// Backend is the persistence used by Area; *db.KV satisfies it.
type Backend interface {
	Get(ctx context.Context, area string, keys []string) (map[string]string, error)
	Set(ctx context.Context, area string, items map[string]string) error
	Remove(ctx context.Context, area string, keys []string) error
}

// Area is a Store scoped to one namespace of a Backend.
type Area struct {
	backend Backend
	name    string
}

func NewArea(backend Backend, name string) *Area {
	return &Area{backend: backend, name: name}
}

func (a *Area) Get(ctx context.Context, keys ...string) (map[string]json.RawMessage, error) {
	raw, err := a.backend.Get(ctx, a.name, keys)
	if err != nil {
		return nil, fmt.Errorf("storage get (%s): %w", a.name, err)
	}
	out := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}

func (a *Area) Set(ctx context.Context, items map[string]any) error {
	encoded, err := encode(items)
	if err != nil {
		return err
	}
	if err := a.backend.Set(ctx, a.name, encoded); err != nil {
		return fmt.Errorf("storage set (%s): %w", a.name, err)
	}
	return nil
}

func (a *Area) Remove(ctx context.Context, keys ...string) error {
	if err := a.backend.Remove(ctx, a.name, keys); err != nil {
		return fmt.Errorf("storage remove (%s): %w", a.name, err)
	}
	return nil
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, keys ...string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := m.items[k]; ok {
			out[k] = json.RawMessage(v)
		}
	}
	return out, nil
}

func (m *Memory) Set(_ context.Context, items map[string]any) error {
	encoded, err := encode(items)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range encoded {
		m.items[k] = v
	}
	return nil
}

func (m *Memory) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

// Decode unmarshals items[key] into v. It reports false when the key is
// missing or holds JSON null.
func Decode(items map[string]json.RawMessage, key string, v any) (bool, error) {
	raw, ok := items[key]
	if !ok || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func encode(items map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(items))
	for k, v := range items {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k] = string(b)
	}
	return out, nil
}
