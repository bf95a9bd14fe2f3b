// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/highlightly/auth"
	"github.com/danielhkuo/highlightly/models"
)

var ErrWordNotFound = errors.New("word not found")

// WordStore is the local word database. Records are append-only apart from
// the synced flag, which only ever moves from false to true.
type WordStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewWordStore(db *sql.DB) *WordStore {
	return &WordStore{db: db, now: time.Now}
}

// Add inserts a new word and returns its generated ID.
// ID, CreatedAt and Synced on w are ignored.
func (s *WordStore) Add(ctx context.Context, w models.SavedWord) (string, error) {
	if strings.TrimSpace(w.Word) == "" {
		return "", fmt.Errorf("word must be non-empty")
	}

	now := s.now()
	id, err := auth.GenerateWordID(now)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO word (id, word, meaning, url, created_at, synced)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, w.Word, w.Meaning, w.URL, now.UnixMilli(), false)
	if err != nil {
		return "", fmt.Errorf("insert word: %w", err)
	}
	return id, nil
}

// Import inserts words fetched from the server as already synced.
// Words whose ID is already present are left untouched.
func (s *WordStore) Import(ctx context.Context, words []models.SavedWord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	for _, w := range words {
		if w.ID == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO word (id, word, meaning, url, created_at, synced)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, w.ID, w.Word, w.Meaning, w.URL, w.CreatedAt, true)
		if err != nil {
			return 0, fmt.Errorf("import word %s: %w", w.ID, err)
		}
		n, _ := res.RowsAffected()
		imported += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}

// All returns every word, newest first.
func (s *WordStore) All(ctx context.Context) ([]models.SavedWord, error) {
	return s.query(ctx, `
		SELECT id, word, meaning, url, created_at, synced
		FROM word
		ORDER BY created_at DESC, id DESC
	`)
}

// Unsynced returns the words not yet acknowledged by the server, newest first.
func (s *WordStore) Unsynced(ctx context.Context) ([]models.SavedWord, error) {
	return s.query(ctx, `
		SELECT id, word, meaning, url, created_at, synced
		FROM word
		WHERE synced = $1
		ORDER BY created_at DESC, id DESC
	`, false)
}

// UnsyncedCount returns the number of words waiting for sync.
func (s *WordStore) UnsyncedCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM word WHERE synced = $1`, false).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Get returns the word with the given ID.
func (s *WordStore) Get(ctx context.Context, id string) (models.SavedWord, error) {
	var w models.SavedWord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, word, meaning, url, created_at, synced
		FROM word
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Word, &w.Meaning, &w.URL, &w.CreatedAt, &w.Synced)
	if err == sql.ErrNoRows {
		return models.SavedWord{}, ErrWordNotFound
	}
	if err != nil {
		return models.SavedWord{}, err
	}
	return w, nil
}

// Update changes the text fields of a word. The synced flag is not touched.
func (s *WordStore) Update(ctx context.Context, w models.SavedWord) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE word SET word = $1, meaning = $2, url = $3 WHERE id = $4
	`, w.Word, w.Meaning, w.URL, w.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWordNotFound
	}
	return nil
}

// MarkSynced flips the synced flag of the given words in one transaction
// and returns how many records transitioned.
func (s *WordStore) MarkSynced(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	marked := 0
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `UPDATE word SET synced = $1 WHERE id = $2 AND synced = $3`, true, id, false)
		if err != nil {
			return 0, fmt.Errorf("mark %s synced: %w", id, err)
		}
		n, _ := res.RowsAffected()
		marked += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return marked, nil
}

// Delete removes a word.
func (s *WordStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM word WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWordNotFound
	}
	return nil
}

// Clear removes every word.
func (s *WordStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM word`)
	return err
}

func (s *WordStore) query(ctx context.Context, query string, args ...interface{}) ([]models.SavedWord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := []models.SavedWord{}
	for rows.Next() {
		var w models.SavedWord
		if err := rows.Scan(&w.ID, &w.Word, &w.Meaning, &w.URL, &w.CreatedAt, &w.Synced); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
