// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package stores

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/danielhkuo/highlightly/db"
	"github.com/danielhkuo/highlightly/models"
	"github.com/danielhkuo/highlightly/notify"
)

// WordsStore holds the saved word list, newest first.
type WordsStore struct {
	*Value[[]models.SavedWord]

	words    *db.WordStore
	notifier notify.Notifier
}

func NewWordsStore(words *db.WordStore, notifier notify.Notifier) *WordsStore {
	return &WordsStore{Value: NewValue([]models.SavedWord{}), words: words, notifier: notifier}
}

// Load reads every word from the database.
func (s *WordsStore) Load(ctx context.Context) error {
	words, err := s.words.All(ctx)
	if err != nil {
		return err
	}
	s.Set(words)
	return nil
}

// Add saves a new word and prepends it to the list.
func (s *WordsStore) Add(ctx context.Context, w models.SavedWord) (models.SavedWord, error) {
	id, err := s.words.Add(ctx, w)
	if err != nil {
		return models.SavedWord{}, err
	}
	saved, err := s.words.Get(ctx, id)
	if err != nil {
		return models.SavedWord{}, err
	}
	s.Value.Update(func(list []models.SavedWord) []models.SavedWord {
		return append([]models.SavedWord{saved}, list...)
	})
	return saved, nil
}

// Remove deletes a word. Failures are reported to the user.
func (s *WordsStore) Remove(ctx context.Context, id string) error {
	if err := s.words.Delete(ctx, id); err != nil {
		slog.Error("words: delete failed", "word_id", id, "error", err)
		s.notifier.Notify(models.NoticeDeleteFailed)
		return fmt.Errorf("delete %s: %w", id, err)
	}
	s.Value.Update(func(list []models.SavedWord) []models.SavedWord {
		return slices.DeleteFunc(slices.Clone(list), func(w models.SavedWord) bool { return w.ID == id })
	})
	return nil
}

// Update changes the text fields of a word.
func (s *WordsStore) Update(ctx context.Context, w models.SavedWord) error {
	if err := s.words.Update(ctx, w); err != nil {
		return err
	}
	updated, err := s.words.Get(ctx, w.ID)
	if err != nil {
		return err
	}
	s.Value.Update(func(list []models.SavedWord) []models.SavedWord {
		out := slices.Clone(list)
		for i := range out {
			if out[i].ID == updated.ID {
				out[i] = updated
			}
		}
		return out
	})
	return nil
}

// Import stores words pulled from the server as synced and reloads the
// list. It returns how many words were new.
func (s *WordsStore) Import(ctx context.Context, words []models.SavedWord) (int, error) {
	n, err := s.words.Import(ctx, words)
	if err != nil {
		return 0, fmt.Errorf("import words: %w", err)
	}
	if err := s.Load(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// Clear deletes every saved word.
func (s *WordsStore) Clear(ctx context.Context) error {
	if err := s.words.Clear(ctx); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}
	s.Set([]models.SavedWord{})
	return nil
}

// UnsyncedCount returns the number of words waiting for sync.
func (s *WordsStore) UnsyncedCount(ctx context.Context) (int, error) {
	return s.words.UnsyncedCount(ctx)
}
