// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/metrics"
	"github.com/moodscreen/moodscreen/internal/recerr"
)

// Client is a Source backed by an OpenWeather-style current-conditions
// API. Fetch failures surface as upstream errors; this client does not
// retry.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a weather client from config.
func NewClient(cfg *config.WeatherConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type currentResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Dt       int64 `json:"dt"`
	Timezone int   `json:"timezone"`
}

// Current fetches the current conditions for a coordinate.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Observation, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)

	start := time.Now()
	obs, err := c.fetch(ctx, "/weather?"+params.Encode())
	metrics.RecordUpstreamRequest("weather", time.Since(start), err)
	if err != nil {
		return Observation{}, recerr.Upstream(err, "weather fetch failed")
	}
	return obs, nil
}

func (c *Client) fetch(ctx context.Context, path string) (Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return Observation{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Observation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Observation{}, fmt.Errorf("weather source returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Observation{}, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Weather) == 0 {
		return Observation{}, fmt.Errorf("weather source returned no condition")
	}

	return Observation{
		Condition:        payload.Weather[0].Main,
		ObservedAt:       payload.Dt,
		UTCOffsetSeconds: payload.Timezone,
	}, nil
}
