// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// KV is a namespaced key-value table. Values are opaque strings (JSON).
type KV struct {
	db *sql.DB
}

func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// Get returns the stored values for keys in area. Missing keys are absent
// from the result.
func (kv *KV) Get(ctx context.Context, area string, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(keys))
	args := make([]interface{}, 0, len(keys)+1)
	args = append(args, area)
	for i, k := range keys {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, k)
	}

	rows, err := kv.db.QueryContext(ctx,
		`SELECT item_key, item_value FROM storage_item WHERE area = $1 AND item_key IN (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Set upserts items in area atomically.
func (kv *KV) Set(ctx context.Context, area string, items map[string]string) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := kv.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for k, v := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO storage_item (area, item_key, item_value, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (area, item_key) DO UPDATE SET
				item_value = excluded.item_value,
				updated_at = excluded.updated_at
		`, area, k, v, now)
		if err != nil {
			return fmt.Errorf("set %s/%s: %w", area, k, err)
		}
	}
	return tx.Commit()
}

// Remove deletes keys from area. Missing keys are ignored.
func (kv *KV) Remove(ctx context.Context, area string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := kv.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM storage_item WHERE area = $1 AND item_key = $2`, area, k); err != nil {
			return fmt.Errorf("remove %s/%s: %w", area, k, err)
		}
	}
	return tx.Commit()
}
