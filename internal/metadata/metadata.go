// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package metadata fetches movie descriptive text from an external
// catalog, with client-side rate limiting and bounded retry.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/logging"
	"github.com/moodscreen/moodscreen/internal/metrics"
	"github.com/moodscreen/moodscreen/internal/recerr"
)

// Movie is the descriptive metadata used to derive item embeddings.
type Movie struct {
	ID       string
	Title    string
	Overview string
	Genres   []string
}

// SourceText joins title, overview, and genre names with spaces. This
// exact concatenation is what gets encoded and stored per item.
func (m Movie) SourceText() string {
	parts := make([]string, 0, 2+len(m.Genres))
	if m.Title != "" {
		parts = append(parts, m.Title)
	}
	if m.Overview != "" {
		parts = append(parts, m.Overview)
	}
	for _, g := range m.Genres {
		if g != "" {
			parts = append(parts, g)
		}
	}
	return strings.Join(parts, " ")
}

// Empty reports whether the movie carries no descriptive text at all.
func (m Movie) Empty() bool {
	return m.SourceText() == ""
}

// Source fetches movie metadata by ID.
type Source interface {
	Movie(ctx context.Context, id string) (Movie, error)
}

// Client is a Source backed by a TMDB-style REST API. Calls are rate
// limited client-side and retried a bounded number of times with
// increasing backoff.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   int
	retryDelay time.Duration
}

// NewClient creates a metadata client from config.
func NewClient(cfg *config.MetadataConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		attempts:   cfg.RetryAttempts,
		retryDelay: cfg.RetryDelay,
	}
}

type movieResponse struct {
	Title    string `json:"title"`
	Overview string `json:"overview"`
	Genres   []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

// notFoundError marks a 404 so the retry loop can stop early.
type notFoundError struct{ id string }

func (e *notFoundError) Error() string {
	return fmt.Sprintf("movie %s not found", e.id)
}

// Movie fetches metadata for the given movie ID. A 404 becomes a
// NotFound error without retrying; other failures are retried with
// backoff up to the configured attempt count.
func (c *Client) Movie(ctx context.Context, id string) (Movie, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return Movie{}, recerr.Upstream(err, "metadata rate limit wait aborted")
		}

		start := time.Now()
		movie, err := c.fetch(ctx, id)
		metrics.RecordUpstreamRequest("metadata", time.Since(start), err)
		if err == nil {
			return movie, nil
		}

		var nf *notFoundError
		if errors.As(err, &nf) {
			return Movie{}, recerr.NotFound("movie %s not found", id)
		}

		lastErr = err
		if attempt < c.attempts {
			metrics.RecordUpstreamRetry("metadata")
			logging.Warn().
				Err(err).
				Str("movie_id", id).
				Int("attempt", attempt).
				Msg("Metadata fetch failed, retrying")

			select {
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return Movie{}, recerr.Upstream(ctx.Err(), "metadata fetch canceled")
			}
		}
	}
	return Movie{}, recerr.Upstream(lastErr, "metadata fetch failed after %d attempts", c.attempts)
}

func (c *Client) fetch(ctx context.Context, id string) (Movie, error) {
	url := fmt.Sprintf("%s/movie/%s?api_key=%s", c.baseURL, id, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Movie{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Movie{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Movie{}, &notFoundError{id: id}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Movie{}, fmt.Errorf("metadata source returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload movieResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Movie{}, fmt.Errorf("decode response: %w", err)
	}

	genres := make([]string, 0, len(payload.Genres))
	for _, g := range payload.Genres {
		genres = append(genres, g.Name)
	}
	return Movie{ID: id, Title: payload.Title, Overview: payload.Overview, Genres: genres}, nil
}
