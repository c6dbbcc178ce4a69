// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/index"
	"github.com/moodscreen/moodscreen/internal/logging"
	"github.com/moodscreen/moodscreen/internal/metrics"
	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/vector"
)

const (
	cacheTypeUser   = "user_recommendations"
	maxCacheEntries = 1024
)

// Engine answers recommendation queries. Query-vector retrieval goes
// straight to the configured strategy; user-profile retrieval is
// cached per (user, k) for the configured TTL. Safe for concurrent
// use.
type Engine struct {
	cfg *config.RecommendConfig
	idx index.Index
	ret Retriever

	cacheMu sync.RWMutex
	cache   map[string]cacheEntry
}

type cacheEntry struct {
	ids       []string
	expiresAt time.Time
}

// NewEngine creates an Engine with the strategy named in config.
func NewEngine(cfg *config.RecommendConfig, idx index.Index) (*Engine, error) {
	ret, err := NewRetriever(cfg, idx)
	if err != nil {
		return nil, fmt.Errorf("create retriever: %w", err)
	}
	return &Engine{
		cfg:   cfg,
		idx:   idx,
		ret:   ret,
		cache: make(map[string]cacheEntry),
	}, nil
}

// Similar returns the top-k item IDs for a query embedding. A
// non-positive k falls back to the configured default.
func (e *Engine) Similar(ctx context.Context, query vector.Vector, k int) ([]string, error) {
	return e.ret.Retrieve(ctx, query, e.normalizeK(k))
}

// ForUser retrieves recommendations against the user's stored profile.
// An unknown user is a NotFound failure.
func (e *Engine) ForUser(ctx context.Context, userID string, k int) ([]string, error) {
	if userID == "" {
		return nil, recerr.InvalidInput("empty user ID")
	}
	k = e.normalizeK(k)

	key := fmt.Sprintf("user:%s:%d", userID, k)
	if ids, ok := e.checkCache(key); ok {
		metrics.CacheHits.WithLabelValues(cacheTypeUser).Inc()
		return ids, nil
	}
	metrics.CacheMisses.WithLabelValues(cacheTypeUser).Inc()

	profiles, err := e.idx.Fetch(ctx, index.NamespaceUsers, []string{userID})
	if err != nil {
		return nil, err
	}
	profile, ok := profiles[userID]
	if !ok {
		return nil, recerr.NotFound("user not found")
	}

	ids, err := e.ret.Retrieve(ctx, profile, k)
	if err != nil {
		return nil, err
	}

	e.storeCache(key, ids)
	logging.Debug().Str("user_id", userID).Int("k", k).Int("results", len(ids)).
		Msg("User recommendations computed")
	return ids, nil
}

// InvalidateUser drops cached results for a user, for all values of k.
// Called after a profile write so stale recommendations are not served
// for the full TTL.
func (e *Engine) InvalidateUser(userID string) {
	prefix := fmt.Sprintf("user:%s:", userID)

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	for key := range e.cache {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(e.cache, key)
			metrics.CacheEvictions.WithLabelValues(cacheTypeUser).Inc()
		}
	}
}

func (e *Engine) normalizeK(k int) int {
	if k <= 0 {
		return e.cfg.TopK
	}
	return k
}

func (e *Engine) checkCache(key string) ([]string, bool) {
	if e.cfg.CacheTTL <= 0 {
		return nil, false
	}

	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	entry, ok := e.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}

	ids := make([]string, len(entry.ids))
	copy(ids, entry.ids)
	return ids, true
}

func (e *Engine) storeCache(key string, ids []string) {
	if e.cfg.CacheTTL <= 0 {
		return
	}

	stored := make([]string, len(ids))
	copy(stored, ids)

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if len(e.cache) >= maxCacheEntries {
		e.evictExpiredLocked()
	}
	e.cache[key] = cacheEntry{ids: stored, expiresAt: time.Now().Add(e.cfg.CacheTTL)}
}

// evictExpiredLocked removes expired entries. Must be called with
// cacheMu held.
func (e *Engine) evictExpiredLocked() {
	now := time.Now()
	for key, entry := range e.cache {
		if now.After(entry.expiresAt) {
			delete(e.cache, key)
			metrics.CacheEvictions.WithLabelValues(cacheTypeUser).Inc()
		}
	}
}
