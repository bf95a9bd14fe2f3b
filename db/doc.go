// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema, and the two local stores.

# Drivers

Open accepts "sqlite" (modernc.org/sqlite, the default) or "postgres"
(github.com/lib/pq). Queries use $N placeholders, which both drivers accept.

	conn, err := db.Open(db.TypeSQLite, "file:highlightly.db")
	err = db.CreateSchema(conn)

# Schema

	word          - saved words (id, word, meaning, url, created_at, synced)
	storage_item  - key-value items grouped by area (sync, local)

Indexes on word(created_at) and word(synced) back the newest-first listing
and the unsynced scan.

# Word Store

	words := db.NewWordStore(conn)
	id, err := words.Add(ctx, models.SavedWord{Word: "ephemeral", Meaning: "..."})
	pending, err := words.Unsynced(ctx)
	n, err := words.MarkSynced(ctx, ids...)

IDs have the form word_<unixMillis>_<9 base36 chars>. The synced flag only
moves from false to true; Update never touches it.

# Key-Value Store

	kv := db.NewKV(conn)
	err := kv.Set(ctx, "sync", map[string]string{"authToken": `"t"`})

Values are opaque strings; the storage package stores JSON in them.
*/
package db
