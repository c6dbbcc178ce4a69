// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package index

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/moodscreen/moodscreen/internal/breaker"
	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/metrics"
	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// Pinecone is an Index backed by a Pinecone-style vector database REST
// API. All calls go through a shared circuit breaker.
type Pinecone struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[interface{}]
}

// NewPinecone creates a Pinecone index client from config.
func NewPinecone(cfg *config.IndexConfig) *Pinecone {
	return &Pinecone{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cb: breaker.New("vector-index"),
	}
}

type pineconeVector struct {
	ID     string    `json:"id"`
	Values []float64 `json:"values"`
}

type upsertRequest struct {
	Vectors   []pineconeVector `json:"vectors"`
	Namespace string           `json:"namespace,omitempty"`
}

type fetchResponse struct {
	Vectors map[string]pineconeVector `json:"vectors"`
}

type queryRequest struct {
	Vector    []float64 `json:"vector"`
	TopK      int       `json:"topK"`
	Namespace string    `json:"namespace,omitempty"`
}

type queryMatch struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

type queryResponse struct {
	Matches []queryMatch `json:"matches"`
}

// Upsert writes the records to the given namespace.
func (p *Pinecone) Upsert(ctx context.Context, namespace string, records []Record) error {
	req := upsertRequest{Namespace: namespace, Vectors: make([]pineconeVector, 0, len(records))}
	for _, rec := range records {
		if rec.ID == "" {
			return recerr.InvalidInput("record with empty ID")
		}
		if !rec.Values.IsFinite() {
			return recerr.InvalidInput("record %s has non-finite components", rec.ID)
		}
		req.Vectors = append(req.Vectors, pineconeVector{ID: rec.ID, Values: rec.Values})
	}

	start := time.Now()
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.post(ctx, "/vectors/upsert", req, nil)
	})
	metrics.RecordIndexOperation("upsert", namespace, time.Since(start), err)
	if err != nil {
		return recerr.Upstream(err, "index upsert failed")
	}
	return nil
}

// Fetch retrieves vectors by ID. Missing IDs are absent from the
// result map.
func (p *Pinecone) Fetch(ctx context.Context, namespace string, ids []string) (map[string]vector.Vector, error) {
	if len(ids) == 0 {
		return map[string]vector.Vector{}, nil
	}

	params := url.Values{}
	for _, id := range ids {
		params.Add("ids", id)
	}
	if namespace != "" {
		params.Set("namespace", namespace)
	}

	start := time.Now()
	result, err := p.cb.Execute(func() (interface{}, error) {
		resp := &fetchResponse{}
		if err := p.get(ctx, "/vectors/fetch?"+params.Encode(), resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	metrics.RecordIndexOperation("fetch", namespace, time.Since(start), err)

	resp, err := breaker.CastResult[fetchResponse](result, err)
	if err != nil {
		return nil, recerr.Upstream(err, "index fetch failed")
	}

	out := make(map[string]vector.Vector, len(resp.Vectors))
	for id, v := range resp.Vectors {
		out[id] = vector.Vector(v.Values)
	}
	return out, nil
}

// Query returns the top-k most similar records in the namespace,
// ranked by the index's similarity metric.
func (p *Pinecone) Query(ctx context.Context, namespace string, v vector.Vector, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, recerr.InvalidInput("topK must be positive, got %d", topK)
	}

	req := queryRequest{Vector: v, TopK: topK, Namespace: namespace}

	start := time.Now()
	result, err := p.cb.Execute(func() (interface{}, error) {
		resp := &queryResponse{}
		if err := p.post(ctx, "/query", req, resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	metrics.RecordIndexOperation("query", namespace, time.Since(start), err)

	resp, err := breaker.CastResult[queryResponse](result, err)
	if err != nil {
		return nil, recerr.Upstream(err, "index query failed")
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, Match{ID: m.ID, Score: m.Score})
	}
	return matches, nil
}

func (p *Pinecone) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return p.do(req, out)
}

func (p *Pinecone) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return err
	}
	return p.do(req, out)
}

func (p *Pinecone) do(req *http.Request, out interface{}) error {
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("index returned status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
