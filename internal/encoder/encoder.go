// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package encoder defines the text embedding encoder abstraction and
// its HTTP inference client.
package encoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
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

// TextEncoder converts text into fixed-dimension embedding vectors.
type TextEncoder interface {
	Encode(ctx context.Context, text string) (vector.Vector, error)
}

// Client is a TextEncoder backed by a sentence-embedding inference
// endpoint. Requests go through a circuit breaker.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[interface{}]
}

// NewClient creates an encoder client from config.
func NewClient(cfg *config.EncoderConfig) *Client {
	return &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         breaker.New("text-encoder"),
	}
}

type encodeRequest struct {
	Inputs []string `json:"inputs"`
}

// Encode returns the embedding for the given text.
func (c *Client) Encode(ctx context.Context, text string) (vector.Vector, error) {
	start := time.Now()
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.encode(ctx, []string{text})
	})
	metrics.RecordUpstreamRequest("encoder", time.Since(start), err)

	vectors, err := breaker.CastResult[[]vector.Vector](result, err)
	if err != nil {
		return nil, recerr.Upstream(err, "encode failed")
	}
	if len(*vectors) != 1 {
		return nil, recerr.Upstream(nil, "encoder returned %d embeddings for 1 input", len(*vectors))
	}

	v := (*vectors)[0]
	if !v.IsFinite() {
		return nil, recerr.Upstream(nil, "encoder returned non-finite embedding")
	}
	return v, nil
}

func (c *Client) encode(ctx context.Context, texts []string) (*[]vector.Vector, error) {
	payload, err := json.Marshal(encodeRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("encoder returned status %d: %s", resp.StatusCode, string(body))
	}

	var embeddings [][]float64
	if err := json.NewDecoder(resp.Body).Decode(&embeddings); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]vector.Vector, len(embeddings))
	for i, e := range embeddings {
		out[i] = vector.Vector(e)
	}
	return &out, nil
}
