// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package ingest

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/index"
	"github.com/moodscreen/moodscreen/internal/metadata"
	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/store"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// countingMetadata counts fetches and returns a fixed movie.
type countingMetadata struct {
	calls atomic.Int32
	movie metadata.Movie
	err   error
}

func (c *countingMetadata) Movie(_ context.Context, id string) (metadata.Movie, error) {
	c.calls.Add(1)
	if c.err != nil {
		return metadata.Movie{}, c.err
	}
	m := c.movie
	m.ID = id
	return m, nil
}

// stubEncoder returns a fixed vector for any text.
type stubEncoder struct {
	v     vector.Vector
	calls atomic.Int32
}

func (s *stubEncoder) Encode(_ context.Context, _ string) (vector.Vector, error) {
	s.calls.Add(1)
	return s.v.Clone(), nil
}

func newTestIngestor(t *testing.T, meta *countingMetadata, enc *stubEncoder) (*Ingestor, *index.Memory, *store.Store) {
	t.Helper()
	idx := index.NewMemory()
	texts, err := store.Open(&config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = texts.Close() })
	return New(idx, meta, enc, texts), idx, texts
}

func TestEnsureStoresNewItem(t *testing.T) {
	meta := &countingMetadata{movie: metadata.Movie{
		Title:    "Up",
		Overview: "A retired balloon salesman.",
		Genres:   []string{"Animation", "Adventure"},
	}}
	enc := &stubEncoder{v: vector.Vector{0.1, 0.2}}
	ing, idx, texts := newTestIngestor(t, meta, enc)

	v, err := ing.Ensure(context.Background(), "14160")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if v.Dim() != 2 {
		t.Errorf("returned vector dim = %d, want 2", v.Dim())
	}

	stored, err := idx.Fetch(context.Background(), index.NamespaceItems, []string{"14160"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, ok := stored["14160"]; !ok {
		t.Error("vector not stored in item namespace")
	}

	text, found, err := texts.GetSourceText("14160")
	if err != nil {
		t.Fatalf("GetSourceText() error = %v", err)
	}
	if !found || text != "Up A retired balloon salesman. Animation Adventure" {
		t.Errorf("stored source text = %q, found = %v", text, found)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	meta := &countingMetadata{movie: metadata.Movie{Title: "Up"}}
	enc := &stubEncoder{v: vector.Vector{0.5, 0.5}}
	ing, idx, _ := newTestIngestor(t, meta, enc)

	first, err := ing.Ensure(context.Background(), "1")
	if err != nil {
		t.Fatalf("first Ensure() error = %v", err)
	}
	second, err := ing.Ensure(context.Background(), "1")
	if err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}

	// The second call must not hit metadata or the encoder.
	if got := meta.calls.Load(); got != 1 {
		t.Errorf("metadata fetched %d times, want 1", got)
	}
	if got := enc.calls.Load(); got != 1 {
		t.Errorf("encoder called %d times, want 1", got)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("vectors differ at %d: %f vs %f", i, first[i], second[i])
		}
	}

	stored, _ := idx.Fetch(context.Background(), index.NamespaceItems, []string{"1"})
	if len(stored) != 1 {
		t.Errorf("expected exactly one stored vector")
	}
}

func TestEnsureEmptyMetadataIsNoData(t *testing.T) {
	meta := &countingMetadata{movie: metadata.Movie{}}
	enc := &stubEncoder{v: vector.Vector{1}}
	ing, _, _ := newTestIngestor(t, meta, enc)

	_, err := ing.Ensure(context.Background(), "77")
	if !recerr.IsKind(err, recerr.KindNoDataProduced) {
		t.Errorf("Ensure() kind = %v, want NoDataProduced", recerr.KindOf(err))
	}
}

func TestEnsureEmptyIDIsInvalid(t *testing.T) {
	meta := &countingMetadata{movie: metadata.Movie{Title: "x"}}
	ing, _, _ := newTestIngestor(t, meta, &stubEncoder{v: vector.Vector{1}})

	_, err := ing.Ensure(context.Background(), "")
	if !recerr.IsKind(err, recerr.KindInvalidInput) {
		t.Errorf("Ensure() kind = %v, want InvalidInput", recerr.KindOf(err))
	}
}

func TestEnsurePropagatesMetadataError(t *testing.T) {
	meta := &countingMetadata{err: recerr.NotFound("movie 9 not found")}
	ing, _, _ := newTestIngestor(t, meta, &stubEncoder{v: vector.Vector{1}})

	_, err := ing.Ensure(context.Background(), "9")
	if !recerr.IsKind(err, recerr.KindNotFound) {
		t.Errorf("Ensure() kind = %v, want NotFound", recerr.KindOf(err))
	}
}
