// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storage is the key-value gateway and cross-context broadcast used by
every other engine package.

# Areas

Two areas exist: "sync" holds the session (token, user id, cached user,
onboarding flag, device ids) and "local" holds per-device bookkeeping
(last sync time, failed sync attempts). Values are JSON.

	sync := storage.NewArea(db.NewKV(conn), storage.AreaSync)
	err := sync.Set(ctx, map[string]any{"authToken": token})

	items, err := sync.Get(ctx, "authToken", "userId")
	var token string
	ok, err := storage.Decode(items, "authToken", &token)

Memory is an in-process Store with the same semantics, used in tests and
when no database is configured.

# Broadcast

Bus fans a models.Message out to every subscriber. Delivery is best effort:
a subscriber whose buffer is full misses the message and the sender is
never blocked.

	ch, cancel := bus.Subscribe(16)
	defer cancel()
	bus.Broadcast(models.Message{Type: models.MsgUserUpdated, User: u})
*/
package storage
