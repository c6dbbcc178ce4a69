// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package config

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}

	if cfg.Recommend.TopK != 10 {
		t.Errorf("default top_k = %d, want 10", cfg.Recommend.TopK)
	}
	if cfg.Ratings.UpdateThreshold != 3 {
		t.Errorf("default update_threshold = %d, want 3", cfg.Ratings.UpdateThreshold)
	}
	if cfg.Index.Dimension != 768 {
		t.Errorf("default index dimension = %d, want 768", cfg.Index.Dimension)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }},
		{name: "zero server timeout", mutate: func(c *Config) { c.Server.Timeout = 0 }},
		{name: "unknown index provider", mutate: func(c *Config) { c.Index.Provider = "milvus" }},
		{name: "pinecone without url", mutate: func(c *Config) {
			c.Index.Provider = "pinecone"
			c.Index.APIKey = "key"
		}},
		{name: "pinecone without api key", mutate: func(c *Config) {
			c.Index.Provider = "pinecone"
			c.Index.URL = "https://index.example.com"
		}},
		{name: "zero dimension", mutate: func(c *Config) { c.Index.Dimension = 0 }},
		{name: "unknown strategy", mutate: func(c *Config) { c.Recommend.Strategy = "hybrid" }},
		{name: "zero top_k", mutate: func(c *Config) { c.Recommend.TopK = 0 }},
		{name: "zero candidate limit", mutate: func(c *Config) { c.Recommend.CandidateLimit = 0 }},
		{name: "zero rating threshold", mutate: func(c *Config) { c.Ratings.UpdateThreshold = 0 }},
		{name: "zero retry attempts", mutate: func(c *Config) { c.Metadata.RetryAttempts = 0 }},
		{name: "zero max top_k", mutate: func(c *Config) { c.API.MaxTopK = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}

func TestLoadWithKoanfEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECOMMEND_STRATEGY", "local")
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("RECOMMEND_CACHE_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Recommend.Strategy != "local" {
		t.Errorf("recommend.strategy = %q, want local", cfg.Recommend.Strategy)
	}
	if cfg.Metadata.APIKey != "test-key" {
		t.Errorf("metadata.api_key = %q, want test-key", cfg.Metadata.APIKey)
	}
	if cfg.Recommend.CacheTTL != 90*time.Second {
		t.Errorf("recommend.cache_ttl = %v, want 90s", cfg.Recommend.CacheTTL)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.API.CORSOrigins) != len(want) {
		t.Fatalf("cors_origins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	for i := range want {
		if cfg.API.CORSOrigins[i] != want[i] {
			t.Errorf("cors_origins[%d] = %q, want %q", i, cfg.API.CORSOrigins[i], want[i])
		}
	}
}

func TestEnvTransformFuncSkipsUnknownKeys(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("envTransformFunc(PATH) = %q, want empty", got)
	}
	if got := envTransformFunc("PINECONE_API_KEY"); got != "index.api_key" {
		t.Errorf("envTransformFunc(PINECONE_API_KEY) = %q, want index.api_key", got)
	}
}
