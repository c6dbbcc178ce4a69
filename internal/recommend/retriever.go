// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package recommend ranks items against a query embedding and returns
// the top-k item IDs. Two retrieval strategies sit behind one
// interface: index-native queries and local cosine ranking over a
// fetched candidate matrix.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/index"
	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// CanonicalID strips a trailing all-zero fractional suffix from an
// item ID ("123.0" becomes "123"). Legacy pipelines stored numeric IDs
// through a float round-trip; reads tolerate both forms.
func CanonicalID(id string) string {
	i := strings.LastIndexByte(id, '.')
	if i <= 0 || i == len(id)-1 {
		return id
	}
	for _, c := range id[i+1:] {
		if c != '0' {
			return id
		}
	}
	return id[:i]
}

// Retriever returns the top-k item IDs for a query embedding, best
// match first. IDs are canonicalized.
type Retriever interface {
	Retrieve(ctx context.Context, query vector.Vector, k int) ([]string, error)
}

// NewRetriever selects the retrieval strategy from config.
func NewRetriever(cfg *config.RecommendConfig, idx index.Index) (Retriever, error) {
	switch cfg.Strategy {
	case "index":
		return &IndexRetriever{idx: idx}, nil
	case "local":
		return &LocalRetriever{idx: idx, candidateLimit: cfg.CandidateLimit}, nil
	default:
		return nil, fmt.Errorf("unknown retrieval strategy %q", cfg.Strategy)
	}
}

// IndexRetriever delegates ranking to the index itself.
type IndexRetriever struct {
	idx index.Index
}

// Retrieve queries the item namespace for the top-k matches.
func (r *IndexRetriever) Retrieve(ctx context.Context, query vector.Vector, k int) ([]string, error) {
	if err := validateQuery(query, k); err != nil {
		return nil, err
	}

	matches, err := r.idx.Query(ctx, index.NamespaceItems, query, k)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, CanonicalID(m.ID))
	}
	return ids, nil
}

// LocalRetriever fetches a candidate embedding matrix and ranks it by
// cosine similarity in-process. Ties keep candidate order.
type LocalRetriever struct {
	idx            index.Index
	candidateLimit int
}

// Retrieve ranks up to candidateLimit candidates locally and returns
// the top k.
func (r *LocalRetriever) Retrieve(ctx context.Context, query vector.Vector, k int) ([]string, error) {
	if err := validateQuery(query, k); err != nil {
		return nil, err
	}

	matches, err := r.idx.Query(ctx, index.NamespaceItems, query, r.candidateLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []string{}, nil
	}

	candidateIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		candidateIDs = append(candidateIDs, m.ID)
	}

	embeddings, err := r.idx.Fetch(ctx, index.NamespaceItems, candidateIDs)
	if err != nil {
		return nil, err
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		v, ok := embeddings[id]
		if !ok || v.Dim() != query.Dim() {
			continue
		}
		score, err := vector.CosineSimilarity(query, v)
		if err != nil {
			// Only a dimension mismatch errors, and the guard above
			// already filters those; skip rather than fail the query.
			continue
		}
		ranked = append(ranked, scored{id: id, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	ids := make([]string, 0, len(ranked))
	for _, s := range ranked {
		ids = append(ids, CanonicalID(s.id))
	}
	return ids, nil
}

func validateQuery(query vector.Vector, k int) error {
	if k <= 0 {
		return recerr.InvalidInput("k must be positive, got %d", k)
	}
	if query.Dim() == 0 {
		return recerr.InvalidInput("empty query vector")
	}
	if !query.IsFinite() {
		return recerr.InvalidInput("query vector has non-finite components")
	}
	return nil
}
