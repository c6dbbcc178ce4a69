// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package emotion defines the text emotion classifier abstraction and
// its HTTP inference client.
package emotion

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
)

// Score is an emotion label with its classifier confidence.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier scores text against a fixed emotion label set.
// Implementations return scores in the classifier's own order; callers
// sort as needed.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Score, error)
}

// Client is a Classifier backed by a GoEmotions-style inference
// endpoint. Requests go through a circuit breaker.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[interface{}]
}

// NewClient creates a classifier client from config.
func NewClient(cfg *config.EmotionConfig) *Client {
	return &Client{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         breaker.New("emotion-classifier"),
	}
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

// Classify returns the emotion scores for the given text. Empty text
// is allowed; the classifier still produces a score distribution.
func (c *Client) Classify(ctx context.Context, text string) ([]Score, error) {
	start := time.Now()
	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.classify(ctx, text)
	})
	metrics.RecordUpstreamRequest("classifier", time.Since(start), err)

	scores, err := breaker.CastResult[[]Score](result, err)
	if err != nil {
		return nil, recerr.Upstream(err, "emotion classification failed")
	}
	return *scores, nil
}

func (c *Client) classify(ctx context.Context, text string) (*[]Score, error) {
	payload, err := json.Marshal(classifyRequest{Inputs: text})
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
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(body))
	}

	// The inference API nests scores one level per input.
	var nested [][]Score
	if err := json.NewDecoder(resp.Body).Decode(&nested); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(nested) == 0 {
		return &[]Score{}, nil
	}
	return &nested[0], nil
}
