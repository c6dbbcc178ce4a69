// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package store persists item source text in a local Badger database.
// The ingestion pipeline owns writes; the stored text is the exact
// concatenation each item embedding was derived from, kept for
// re-ingestion and debugging.
package store

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/logging"
)

const itemKeyPrefix = "item:"

// Store is a Badger-backed item source-text store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at the configured path. With
// InMemory set the store lives in process memory only; used by tests
// and ephemeral deployments.
func Open(cfg *config.StoreConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open item store: %w", err)
	}

	logging.Info().Bool("in_memory", cfg.InMemory).Str("path", cfg.Path).Msg("Item store opened")
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutSourceText stores the source text for an item, replacing any
// previous value.
func (s *Store) PutSourceText(itemID, text string) error {
	if itemID == "" {
		return errors.New("empty item ID")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(itemKeyPrefix+itemID), []byte(text))
	})
}

// GetSourceText returns the stored source text for an item and whether
// it was found.
func (s *Store) GetSourceText(itemID string) (string, bool, error) {
	var text string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(itemKeyPrefix + itemID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			text = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}
