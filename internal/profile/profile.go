// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package profile maintains per-user taste embeddings: cold-start
// initialization from liked items and warm rating-weighted updates
// blended against the prior profile.
package profile

import (
	"context"

	"github.com/moodscreen/moodscreen/internal/index"
	"github.com/moodscreen/moodscreen/internal/ingest"
	"github.com/moodscreen/moodscreen/internal/logging"
	"github.com/moodscreen/moodscreen/internal/metrics"
	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// Warm update blend weights: how much the fresh rating-weighted
// average counts against the prior stored profile.
const (
	weightFresh = 0.7
	weightPrior = 0.3
)

// Rating is a user's score for an item.
type Rating struct {
	ItemID string  `json:"movie_id"`
	Rating float64 `json:"rating"`
}

// ColdStartResult reports which items actually contributed to a
// cold-start profile.
type ColdStartResult struct {
	UserID       string   `json:"user_id"`
	ValidItemIDs []string `json:"valid_movie_ids"`
	Dimension    int      `json:"dimension"`
}

// Blender owns user profile reads and writes. Concurrent warm updates
// for one user are last-writer-wins on the final upsert; the
// read-modify-write blend is not transactional.
type Blender struct {
	idx index.Index
	ing *ingest.Ingestor
}

// NewBlender creates a Blender.
func NewBlender(idx index.Index, ing *ingest.Ingestor) *Blender {
	return &Blender{idx: idx, ing: ing}
}

// ColdStart sets the user's profile to the unweighted mean of the
// found item embeddings. Items missing from the index are silently
// dropped; zero found items is a NoDataProduced failure.
func (b *Blender) ColdStart(ctx context.Context, userID string, itemIDs []string) (ColdStartResult, error) {
	result, err := b.coldStart(ctx, userID, itemIDs)
	metrics.RecordProfileUpdate("cold_start", err)
	return result, err
}

func (b *Blender) coldStart(ctx context.Context, userID string, itemIDs []string) (ColdStartResult, error) {
	if userID == "" {
		return ColdStartResult{}, recerr.InvalidInput("empty user ID")
	}
	if len(itemIDs) == 0 {
		return ColdStartResult{}, recerr.InvalidInput("empty item list")
	}

	found, err := b.idx.Fetch(ctx, index.NamespaceItems, itemIDs)
	if err != nil {
		return ColdStartResult{}, err
	}

	// Preserve the request order of the items that were found.
	validIDs := make([]string, 0, len(found))
	vectors := make([]vector.Vector, 0, len(found))
	for _, id := range itemIDs {
		if v, ok := found[id]; ok {
			validIDs = append(validIDs, id)
			vectors = append(vectors, v)
		}
	}
	if len(vectors) == 0 {
		return ColdStartResult{}, recerr.NoData("no embeddings found")
	}

	mean, err := vector.Mean(vectors)
	if err != nil {
		return ColdStartResult{}, err
	}

	if err := b.idx.Upsert(ctx, index.NamespaceUsers, []index.Record{{ID: userID, Values: mean}}); err != nil {
		return ColdStartResult{}, err
	}

	logging.Info().
		Str("user_id", userID).
		Int("items", len(validIDs)).
		Int("dimension", mean.Dim()).
		Msg("Cold-start profile stored")

	return ColdStartResult{UserID: userID, ValidItemIDs: validIDs, Dimension: mean.Dim()}, nil
}

// WarmUpdate revises the user's profile from new rating evidence.
// Entries with a non-positive rating or blank item ID are excluded.
// Item embeddings missing from the index are derived on the fly
// through ingestion. The fresh value is a rating-weighted average;
// with a prior profile the stored result is
// 0.7*fresh + 0.3*prior, otherwise the fresh average directly.
func (b *Blender) WarmUpdate(ctx context.Context, userID string, ratings []Rating) (vector.Vector, error) {
	v, err := b.warmUpdate(ctx, userID, ratings)
	metrics.RecordProfileUpdate("warm_update", err)
	return v, err
}

func (b *Blender) warmUpdate(ctx context.Context, userID string, ratings []Rating) (vector.Vector, error) {
	if userID == "" {
		return nil, recerr.InvalidInput("empty user ID")
	}

	accepted := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		if r.Rating <= 0 || r.ItemID == "" {
			continue
		}
		accepted = append(accepted, r)
	}
	if len(accepted) == 0 {
		return nil, recerr.InvalidInput("no acceptable ratings")
	}

	// Per-item derivation failures are logged and skipped; the update
	// fails only when nothing usable remains.
	vectors := make([]vector.Vector, 0, len(accepted))
	weights := make([]float64, 0, len(accepted))
	for _, r := range accepted {
		v, err := b.ing.Ensure(ctx, r.ItemID)
		if err != nil {
			logging.Warn().Err(err).Str("item_id", r.ItemID).Str("user_id", userID).
				Msg("Skipping unratable item in warm update")
			continue
		}
		vectors = append(vectors, v)
		weights = append(weights, r.Rating)
	}
	if len(vectors) == 0 {
		return nil, recerr.NoData("no item embeddings available for warm update")
	}

	fresh, err := vector.WeightedAverage(vectors, weights)
	if err != nil {
		return nil, err
	}

	updated := fresh
	priors, err := b.idx.Fetch(ctx, index.NamespaceUsers, []string{userID})
	if err != nil {
		return nil, err
	}
	if prior, ok := priors[userID]; ok {
		updated, err = vector.Blend(fresh, prior, weightFresh, weightPrior)
		if err != nil {
			return nil, err
		}
	}

	if err := b.idx.Upsert(ctx, index.NamespaceUsers, []index.Record{{ID: userID, Values: updated}}); err != nil {
		return nil, err
	}

	logging.Info().
		Str("user_id", userID).
		Int("rated_items", len(vectors)).
		Msg("Warm profile update stored")

	return updated, nil
}
