// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moodscreen/config.yaml",
	"/etc/moodscreen/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8094,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Index: IndexConfig{
			Provider:  "memory",
			URL:       "",
			APIKey:    "",
			Dimension: 768,
			Timeout:   10 * time.Second,
		},
		Encoder: EncoderConfig{
			URL:     "",
			APIKey:  "",
			Timeout: 15 * time.Second,
		},
		Emotion: EmotionConfig{
			URL:     "",
			APIKey:  "",
			Timeout: 15 * time.Second,
		},
		Weather: WeatherConfig{
			URL:     "https://api.openweathermap.org/data/2.5",
			APIKey:  "",
			Timeout: 10 * time.Second,
		},
		Metadata: MetadataConfig{
			URL:           "https://api.themoviedb.org/3",
			APIKey:        "",
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
			RetryDelay:    500 * time.Millisecond,
			RatePerSecond: 4,
		},
		Store: StoreConfig{
			Path:     "/data/moodscreen/items",
			InMemory: false,
		},
		Recommend: RecommendConfig{
			TopK:           10,
			Strategy:       "index",
			CandidateLimit: 1000,
			CacheTTL:       5 * time.Minute,
		},
		Ratings: RatingsConfig{
			UpdateThreshold: 3,
			BufferSize:      256,
		},
		API: APIConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			MaxTopK:           100,
		},
	}
}

// LoadWithKoanf loads configuration using koanf v2 with layered
// sources: struct defaults, then an optional YAML config file, then
// environment variables. Precedence: ENV > file > defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variable names map to koanf paths via the transform
	// table, e.g. TMDB_API_KEY -> metadata.api_key.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when supplied through environment variables.
var sliceConfigPaths = []string{
	"api.cors_origins",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields. Env vars arrive as strings but the config
// struct expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config
// paths. Unmapped variables are skipped so random environment noise
// never pollutes the config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_timeout":          "server.timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Vector index
		"index_provider":  "index.provider",
		"index_url":       "index.url",
		"index_api_key":   "index.api_key",
		"index_dimension": "index.dimension",
		"index_timeout":   "index.timeout",
		// Pinecone-style aliases
		"pinecone_url":     "index.url",
		"pinecone_api_key": "index.api_key",

		// Text encoder
		"encoder_url":     "encoder.url",
		"encoder_api_key": "encoder.api_key",
		"encoder_timeout": "encoder.timeout",

		// Emotion classifier
		"emotion_url":     "emotion.url",
		"emotion_api_key": "emotion.api_key",
		"emotion_timeout": "emotion.timeout",

		// Weather source
		"weather_url":     "weather.url",
		"weather_api_key": "weather.api_key",
		"weather_timeout": "weather.timeout",

		// Movie metadata source
		"metadata_url":             "metadata.url",
		"metadata_timeout":         "metadata.timeout",
		"metadata_retry_attempts":  "metadata.retry_attempts",
		"metadata_retry_delay":     "metadata.retry_delay",
		"metadata_rate_per_second": "metadata.rate_per_second",
		// TMDB-style aliases
		"tmdb_url":     "metadata.url",
		"tmdb_api_key": "metadata.api_key",

		// Item store
		"store_path":      "store.path",
		"store_in_memory": "store.in_memory",

		// Retrieval
		"recommend_top_k":           "recommend.top_k",
		"recommend_strategy":        "recommend.strategy",
		"recommend_candidate_limit": "recommend.candidate_limit",
		"recommend_cache_ttl":       "recommend.cache_ttl",

		// Rating pipeline
		"ratings_update_threshold": "ratings.update_threshold",
		"ratings_buffer_size":      "ratings.buffer_size",

		// API middleware
		"rate_limit_requests": "api.rate_limit_reqs",
		"rate_limit_window":   "api.rate_limit_window",
		"disable_rate_limit":  "api.rate_limit_disabled",
		"cors_origins":        "api.cors_origins",
		"api_max_top_k":       "api.max_top_k",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
