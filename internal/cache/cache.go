// Package cache implements the local durable tier: one JSON blob per logical
// collection, persisted in Badger. It is both the sole store when the remote
// tier is unreachable and a best-effort mirror of remote writes, so a later
// offline session still sees recent history.
//
// Reads and writes never fail the caller's operation: a missing or
// unparseable payload reads as absent, and write failures are logged by the
// sync layer and otherwise ignored. There is no eviction; collections are
// bounded by the sync layer's truncation, not by size.
package cache

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Logical collection names. Each is serialized as a single JSON blob under a
// fixed key, read fully and rewritten fully on each mutation.
const (
	CollectionLeaderboard    = "leaderboard"
	CollectionProfiles       = "profiles"
	CollectionSessions       = "sessions"
	CollectionAnswerHistory  = "answer-history"
	CollectionDailyStreak    = "daily-streak"
	CollectionDailyChallenge = "daily-challenge"
)

// Cache wraps a Badger database holding the local collections.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the local cache at the given directory.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Info("local cache opened", "path", path)

	return &Cache{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// OwnerKey builds the storage key for a per-owner collection, e.g. the
// daily-streak record of one user.
func OwnerKey(collection, owner string) string {
	return collection + ":" + owner
}

// Get reads the blob stored under key into out.
// Returns false when the key is absent or the stored payload is malformed;
// malformed payloads are logged and treated as absent, never surfaced.
func (c *Cache) Get(key string, out any) bool {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false
	}
	if err != nil {
		c.logger.Warn("local cache read failed", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("local cache payload malformed, treating as absent", "key", key, "error", err)
		return false
	}
	return true
}

// Put serializes v and stores it under key, replacing any previous blob.
func (c *Cache) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Keys returns every stored key with the given prefix, for inspection tooling.
func (c *Cache) Keys(prefix string) []string {
	var keys []string
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys
}

// Raw returns the unparsed blob stored under key, for inspection tooling.
func (c *Cache) Raw(key string) ([]byte, bool) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return raw, true
}
