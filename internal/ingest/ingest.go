// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package ingest populates the item namespace of the vector index:
// fetch metadata, encode the descriptive text, upsert the vector, and
// persist the source text. Ingestion is idempotent per item.
package ingest

import (
	"context"

	"github.com/moodscreen/moodscreen/internal/encoder"
	"github.com/moodscreen/moodscreen/internal/index"
	"github.com/moodscreen/moodscreen/internal/logging"
	"github.com/moodscreen/moodscreen/internal/metadata"
	"github.com/moodscreen/moodscreen/internal/metrics"
	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/store"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// Ingestor is the item embedding write path.
type Ingestor struct {
	idx   index.Index
	meta  metadata.Source
	enc   encoder.TextEncoder
	texts *store.Store
}

// New creates an Ingestor.
func New(idx index.Index, meta metadata.Source, enc encoder.TextEncoder, texts *store.Store) *Ingestor {
	return &Ingestor{idx: idx, meta: meta, enc: enc, texts: texts}
}

// Ensure makes sure the item has a vector in the item namespace and
// returns it. If the vector already exists this is a no-op success
// with no upstream fetch. Otherwise the item's descriptive text is
// fetched, encoded, upserted, and persisted.
func (g *Ingestor) Ensure(ctx context.Context, itemID string) (vector.Vector, error) {
	if itemID == "" {
		return nil, recerr.InvalidInput("empty item ID")
	}

	existing, err := g.idx.Fetch(ctx, index.NamespaceItems, []string{itemID})
	if err != nil {
		metrics.RecordIngestion("failure")
		return nil, err
	}
	if v, ok := existing[itemID]; ok {
		metrics.RecordIngestion("exists")
		return v, nil
	}

	movie, err := g.meta.Movie(ctx, itemID)
	if err != nil {
		metrics.RecordIngestion("failure")
		return nil, err
	}
	if movie.Empty() {
		metrics.RecordIngestion("failure")
		return nil, recerr.NoData("movie %s has no descriptive text", itemID)
	}

	sourceText := movie.SourceText()
	v, err := g.enc.Encode(ctx, sourceText)
	if err != nil {
		metrics.RecordIngestion("failure")
		return nil, err
	}
	if !v.IsFinite() {
		metrics.RecordIngestion("failure")
		return nil, recerr.Upstream(nil, "embedding for movie %s has non-finite components", itemID)
	}

	if err := g.idx.Upsert(ctx, index.NamespaceItems, []index.Record{{ID: itemID, Values: v}}); err != nil {
		metrics.RecordIngestion("failure")
		return nil, err
	}

	// The vector is already durable in the index; a source-text write
	// failure is logged, not fatal.
	if err := g.texts.PutSourceText(itemID, sourceText); err != nil {
		logging.Warn().Err(err).Str("item_id", itemID).Msg("Failed to persist item source text")
	}

	metrics.RecordIngestion("stored")
	logging.Debug().Str("item_id", itemID).Int("dimension", v.Dim()).Msg("Item embedding stored")
	return v, nil
}
