// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package index

import (
	"context"
	"sort"
	"sync"

	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// Memory is an in-process Index implementation. It keeps full cosine
// ranking semantics so component tests and single-node deployments
// behave like the remote index.
type Memory struct {
	mu         sync.RWMutex
	namespaces map[string]*memoryNamespace
}

type memoryNamespace struct {
	vectors map[string]vector.Vector
	// order preserves first-insert order for deterministic tie-breaks.
	order []string
}

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{namespaces: make(map[string]*memoryNamespace)}
}

// Upsert stores the records, replacing any existing vectors.
func (m *Memory) Upsert(_ context.Context, namespace string, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.namespaces[namespace]
	if !ok {
		ns = &memoryNamespace{vectors: make(map[string]vector.Vector)}
		m.namespaces[namespace] = ns
	}

	for _, rec := range records {
		if rec.ID == "" {
			return recerr.InvalidInput("record with empty ID")
		}
		if !rec.Values.IsFinite() {
			return recerr.InvalidInput("record %s has non-finite components", rec.ID)
		}
		if _, exists := ns.vectors[rec.ID]; !exists {
			ns.order = append(ns.order, rec.ID)
		}
		ns.vectors[rec.ID] = rec.Values.Clone()
	}
	return nil
}

// Fetch returns the vectors found for the given IDs. Missing IDs are
// simply absent from the result.
func (m *Memory) Fetch(_ context.Context, namespace string, ids []string) (map[string]vector.Vector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]vector.Vector)
	ns, ok := m.namespaces[namespace]
	if !ok {
		return out, nil
	}
	for _, id := range ids {
		if v, found := ns.vectors[id]; found {
			out[id] = v.Clone()
		}
	}
	return out, nil
}

// Query ranks all vectors in the namespace by cosine similarity to v
// and returns the top-k. Ties are broken by insertion order.
func (m *Memory) Query(_ context.Context, namespace string, v vector.Vector, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, recerr.InvalidInput("topK must be positive, got %d", topK)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ns, ok := m.namespaces[namespace]
	if !ok {
		return nil, nil
	}

	matches := make([]Match, 0, len(ns.order))
	for _, id := range ns.order {
		score, err := vector.CosineSimilarity(v, ns.vectors[id])
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{ID: id, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
