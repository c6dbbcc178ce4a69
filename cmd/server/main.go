// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package main is the entry point for the Moodscreen recommendation
// server.
//
// Moodscreen recommends movies from the user's current mood and
// context. Free text and emoji are classified into emotions and mapped
// to genre affinities, local weather and time of day are mapped to
// their own genre affinities, and both paths are composed into query
// embeddings matched against a vector index of movie embeddings. User
// taste profiles live in the same index and are updated from rating
// events.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading via Koanf v2 (defaults, optional
//     YAML file, environment overrides)
//  2. Item store: BadgerDB for item source text persistence
//  3. Vector index: in-memory or Pinecone, per INDEX_PROVIDER
//  4. Upstream clients: emotion classifier, text encoder, weather,
//     movie metadata (each behind a circuit breaker)
//  5. Core: mood scorer, embedding composer, ingestor, profile
//     blender, recommendation engine
//  6. Ratings: Watermill pub/sub pipeline and the buffering consumer
//  7. HTTP server: Chi router under a suture supervisor tree
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults. Common settings:
//
//	export INDEX_PROVIDER=pinecone
//	export INDEX_URL=https://movies-xxxx.svc.pinecone.io
//	export INDEX_API_KEY=your-key
//	export ENCODER_URL=https://api-inference.example.com/encode
//	export EMOTION_URL=https://api-inference.example.com/classify
//	export WEATHER_API_KEY=your-key
//	export METADATA_API_KEY=your-key
//	./moodscreen
//
// Development mode runs entirely in-process:
//
//	export INDEX_PROVIDER=memory
//	export STORE_IN_MEMORY=true
//	./moodscreen
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server stops accepting connections and drains in-flight requests,
// the rating consumer stops, and the item store is closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moodscreen/moodscreen/internal/api"
	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/embedding"
	"github.com/moodscreen/moodscreen/internal/emotion"
	"github.com/moodscreen/moodscreen/internal/encoder"
	"github.com/moodscreen/moodscreen/internal/index"
	"github.com/moodscreen/moodscreen/internal/ingest"
	"github.com/moodscreen/moodscreen/internal/logging"
	"github.com/moodscreen/moodscreen/internal/metadata"
	"github.com/moodscreen/moodscreen/internal/mood"
	"github.com/moodscreen/moodscreen/internal/profile"
	"github.com/moodscreen/moodscreen/internal/ratings"
	"github.com/moodscreen/moodscreen/internal/recommend"
	"github.com/moodscreen/moodscreen/internal/store"
	"github.com/moodscreen/moodscreen/internal/supervisor"
	"github.com/moodscreen/moodscreen/internal/weather"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("index_provider", cfg.Index.Provider).
		Str("retrieval_strategy", cfg.Recommend.Strategy).
		Msg("Starting Moodscreen")

	st, err := store.Open(&cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open item store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing item store")
		}
	}()

	var idx index.Index
	switch cfg.Index.Provider {
	case "memory":
		idx = index.NewMemory()
		logging.Info().Msg("Using in-memory vector index")
	case "pinecone":
		idx = index.NewPinecone(&cfg.Index)
		logging.Info().Str("url", cfg.Index.URL).Msg("Using Pinecone vector index")
	default:
		logging.Fatal().Str("provider", cfg.Index.Provider).Msg("Unknown index provider")
	}

	// Upstream clients. Each carries its own circuit breaker, so a
	// flapping inference endpoint fails fast instead of piling up
	// blocked handlers.
	emoClient := emotion.NewClient(&cfg.Emotion)
	encClient := encoder.NewClient(&cfg.Encoder)
	weatherClient := weather.NewClient(&cfg.Weather)
	metaClient := metadata.NewClient(&cfg.Metadata)

	scorer := mood.NewScorer(emoClient)
	composer := embedding.NewComposer(encClient)
	mapper := weather.NewMapper(weatherClient)
	ingestor := ingest.New(idx, metaClient, encClient, st)
	blender := profile.NewBlender(idx, ingestor)

	engine, err := recommend.NewEngine(&cfg.Recommend, idx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	pipeline, err := ratings.NewPipeline(&cfg.Ratings)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create rating pipeline")
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing rating pipeline")
		}
	}()
	consumer := ratings.NewConsumer(pipeline, blender, engine, cfg.Ratings.UpdateThreshold)
	logging.Info().
		Int("update_threshold", cfg.Ratings.UpdateThreshold).
		Msg("Rating pipeline initialized")

	handler := api.NewHandler(api.HandlerDeps{
		Config:    &cfg.API,
		Analyzer:  scorer,
		Weather:   mapper,
		Composer:  composer,
		Engine:    engine,
		Blender:   blender,
		Ingestor:  ingestor,
		Publisher: pipeline,
		Version:   version,
	})
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddMessagingService(consumer)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
