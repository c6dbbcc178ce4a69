// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package config defines the service configuration and its layered
// loader: struct defaults, optional YAML file, environment overrides.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Index     IndexConfig     `koanf:"index"`
	Encoder   EncoderConfig   `koanf:"encoder"`
	Emotion   EmotionConfig   `koanf:"emotion"`
	Weather   WeatherConfig   `koanf:"weather"`
	Metadata  MetadataConfig  `koanf:"metadata"`
	Store     StoreConfig     `koanf:"store"`
	Recommend RecommendConfig `koanf:"recommend"`
	Ratings   RatingsConfig   `koanf:"ratings"`
	API       APIConfig       `koanf:"api"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IndexConfig holds vector index settings.
//
// Provider selects the implementation: "memory" for the in-process
// index, "pinecone" for the remote REST index.
type IndexConfig struct {
	Provider  string        `koanf:"provider"`
	URL       string        `koanf:"url"`
	APIKey    string        `koanf:"api_key"`
	Dimension int           `koanf:"dimension"`
	Timeout   time.Duration `koanf:"timeout"`
}

// EncoderConfig holds text encoder inference settings.
type EncoderConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// EmotionConfig holds emotion classifier inference settings.
type EmotionConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// WeatherConfig holds weather source settings.
type WeatherConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// MetadataConfig holds movie metadata source settings.
type MetadataConfig struct {
	URL           string        `koanf:"url"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`
	RetryAttempts int           `koanf:"retry_attempts"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
	RatePerSecond float64       `koanf:"rate_per_second"`
}

// StoreConfig holds the local item store settings.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// RecommendConfig holds retrieval and ranking settings.
//
// Strategy selects the retriever: "index" queries the vector index
// natively, "local" ranks a fetched candidate set by cosine similarity.
type RecommendConfig struct {
	TopK           int           `koanf:"top_k"`
	Strategy       string        `koanf:"strategy"`
	CandidateLimit int           `koanf:"candidate_limit"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
}

// RatingsConfig holds the rating event pipeline settings.
type RatingsConfig struct {
	UpdateThreshold int `koanf:"update_threshold"`
	BufferSize      int `koanf:"buffer_size"`
}

// APIConfig holds API middleware settings.
type APIConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	MaxTopK           int           `koanf:"max_top_k"`
}

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}

	switch c.Index.Provider {
	case "memory":
	case "pinecone":
		if c.Index.URL == "" {
			return fmt.Errorf("index.url is required for the pinecone provider")
		}
		if c.Index.APIKey == "" {
			return fmt.Errorf("index.api_key is required for the pinecone provider")
		}
	default:
		return fmt.Errorf("index.provider must be memory or pinecone, got %q", c.Index.Provider)
	}
	if c.Index.Dimension <= 0 {
		return fmt.Errorf("index.dimension must be positive, got %d", c.Index.Dimension)
	}

	switch c.Recommend.Strategy {
	case "index", "local":
	default:
		return fmt.Errorf("recommend.strategy must be index or local, got %q", c.Recommend.Strategy)
	}
	if c.Recommend.TopK <= 0 {
		return fmt.Errorf("recommend.top_k must be positive, got %d", c.Recommend.TopK)
	}
	if c.Recommend.CandidateLimit <= 0 {
		return fmt.Errorf("recommend.candidate_limit must be positive, got %d", c.Recommend.CandidateLimit)
	}

	if c.Ratings.UpdateThreshold <= 0 {
		return fmt.Errorf("ratings.update_threshold must be positive, got %d", c.Ratings.UpdateThreshold)
	}

	if c.Metadata.RetryAttempts < 1 {
		return fmt.Errorf("metadata.retry_attempts must be at least 1, got %d", c.Metadata.RetryAttempts)
	}

	if c.API.MaxTopK <= 0 {
		return fmt.Errorf("api.max_top_k must be positive, got %d", c.API.MaxTopK)
	}

	return nil
}
