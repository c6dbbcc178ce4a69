// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package index

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/vector"
)

func newTestPinecone(t *testing.T, handler http.Handler) (*Pinecone, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewPinecone(&config.IndexConfig{
		URL:     srv.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
	return client, srv
}

func TestPineconeQuery(t *testing.T) {
	client, _ := newTestPinecone(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Api-Key"); got != "test-key" {
			t.Errorf("Api-Key header = %q, want test-key", got)
		}

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.TopK != 2 {
			t.Errorf("topK = %d, want 2", req.TopK)
		}
		if req.Namespace != "" {
			t.Errorf("namespace = %q, want item namespace", req.Namespace)
		}

		_ = json.NewEncoder(w).Encode(queryResponse{
			Matches: []queryMatch{
				{ID: "27710", Score: 0.91},
				{ID: "550", Score: 0.88},
			},
		})
	}))

	matches, err := client.Query(context.Background(), NamespaceItems, vector.Vector{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 2 || matches[0].ID != "27710" || matches[1].ID != "550" {
		t.Errorf("Query() matches = %+v", matches)
	}
}

func TestPineconeFetchMissingIDsAbsent(t *testing.T) {
	client, _ := newTestPinecone(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectors/fetch" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("namespace"); got != NamespaceUsers {
			t.Errorf("namespace = %q, want users", got)
		}
		_ = json.NewEncoder(w).Encode(fetchResponse{
			Vectors: map[string]pineconeVector{
				"u1": {ID: "u1", Values: []float64{0.5, 0.5}},
			},
		})
	}))

	got, err := client.Fetch(context.Background(), NamespaceUsers, []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Fetch() returned %d vectors, want 1", len(got))
	}
	if _, ok := got["u2"]; ok {
		t.Error("Fetch() returned vector for missing ID u2")
	}
}

func TestPineconeUpsert(t *testing.T) {
	var received upsertRequest
	client, _ := newTestPinecone(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vectors/upsert" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	err := client.Upsert(context.Background(), NamespaceUsers, []Record{
		{ID: "u1", Values: vector.Vector{0.1, 0.2}},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if received.Namespace != NamespaceUsers {
		t.Errorf("namespace = %q, want users", received.Namespace)
	}
	if len(received.Vectors) != 1 || received.Vectors[0].ID != "u1" {
		t.Errorf("vectors = %+v", received.Vectors)
	}
}

func TestPineconeUpstreamFailure(t *testing.T) {
	client, _ := newTestPinecone(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))

	_, err := client.Query(context.Background(), NamespaceItems, vector.Vector{1}, 1)
	if !recerr.IsKind(err, recerr.KindUpstreamFailure) {
		t.Errorf("Query() kind = %v, want UpstreamFailure", recerr.KindOf(err))
	}
}
