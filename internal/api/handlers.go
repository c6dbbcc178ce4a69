// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package api provides the HTTP surface of the recommendation service
// using the Chi router.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moodscreen/moodscreen/internal/config"
	"github.com/moodscreen/moodscreen/internal/emotion"
	"github.com/moodscreen/moodscreen/internal/mood"
	"github.com/moodscreen/moodscreen/internal/profile"
	"github.com/moodscreen/moodscreen/internal/ratings"
	"github.com/moodscreen/moodscreen/internal/vector"
	"github.com/moodscreen/moodscreen/internal/weather"
)

// moodAnalyzer is satisfied by *mood.Scorer.
type moodAnalyzer interface {
	Analyze(ctx context.Context, text, emoji string) ([]mood.GenreScore, []emotion.Score, error)
}

// weatherMapper is satisfied by *weather.Mapper.
type weatherMapper interface {
	Map(ctx context.Context, lat, lon float64) (weather.Context, []mood.GenreScore, error)
}

// queryComposer is satisfied by *embedding.Composer.
type queryComposer interface {
	Compose(ctx context.Context, text string, emotions []emotion.Score, genres []mood.GenreScore) (vector.Vector, error)
	EncodeGenreQuery(ctx context.Context, genres []mood.GenreScore) (vector.Vector, error)
}

// recommender is satisfied by *recommend.Engine.
type recommender interface {
	Similar(ctx context.Context, query vector.Vector, k int) ([]string, error)
	ForUser(ctx context.Context, userID string, k int) ([]string, error)
	InvalidateUser(userID string)
}

// profileBlender is satisfied by *profile.Blender.
type profileBlender interface {
	ColdStart(ctx context.Context, userID string, itemIDs []string) (profile.ColdStartResult, error)
	WarmUpdate(ctx context.Context, userID string, ratings []profile.Rating) (vector.Vector, error)
}

// itemIngestor is satisfied by *ingest.Ingestor.
type itemIngestor interface {
	Ensure(ctx context.Context, itemID string) (vector.Vector, error)
}

// ratingPublisher is satisfied by *ratings.Pipeline.
type ratingPublisher interface {
	Publish(ctx context.Context, ev ratings.Event) error
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	cfg       *config.APIConfig
	analyzer  moodAnalyzer
	weather   weatherMapper
	composer  queryComposer
	engine    recommender
	blender   profileBlender
	ingestor  itemIngestor
	publisher ratingPublisher
	version   string
}

// HandlerDeps bundles the collaborators for NewHandler.
type HandlerDeps struct {
	Config    *config.APIConfig
	Analyzer  moodAnalyzer
	Weather   weatherMapper
	Composer  queryComposer
	Engine    recommender
	Blender   profileBlender
	Ingestor  itemIngestor
	Publisher ratingPublisher
	Version   string
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		cfg:       deps.Config,
		analyzer:  deps.Analyzer,
		weather:   deps.Weather,
		composer:  deps.Composer,
		engine:    deps.Engine,
		blender:   deps.Blender,
		ingestor:  deps.Ingestor,
		publisher: deps.Publisher,
		version:   deps.Version,
	}
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.version}, time.Now())
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, HealthResponse{Status: "ok"}, time.Now())
}

// HealthReady handles GET /api/v1/health/ready.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, HealthResponse{Status: "ok"}, time.Now())
}

// MoodRecommendations handles POST /api/v1/recommendations/mood.
// The text is classified into emotions, mapped to genres, composed
// into a query embedding, and matched against the item index.
func (h *Handler) MoodRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req MoodRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	genres, emotions, err := h.analyzer.Analyze(r.Context(), req.Text, req.Emoji)
	if err != nil {
		respondRecError(w, err)
		return
	}

	query, err := h.composer.Compose(r.Context(), req.Text, emotions, genres)
	if err != nil {
		respondRecError(w, err)
		return
	}

	ids, err := h.engine.Similar(r.Context(), query, capK(req.K, h.cfg.MaxTopK))
	if err != nil {
		respondRecError(w, err)
		return
	}

	respondData(w, http.StatusOK, MoodResponse{
		Emotions: emotions,
		Genres:   roundGenreScores(genres),
		MovieIDs: ids,
	}, start)
}

// WeatherRecommendations handles POST /api/v1/recommendations/weather.
func (h *Handler) WeatherRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req WeatherRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	wctx, genres, err := h.weather.Map(r.Context(), req.Lat, req.Lon)
	if err != nil {
		respondRecError(w, err)
		return
	}

	resp := WeatherResponse{
		WeatherCondition: wctx.Condition,
		TimeSlot:         wctx.TimeSlot,
		Genres:           roundGenreScores(genres),
		MovieIDs:         []string{},
	}

	// An unmapped condition/slot pair yields no genres and therefore
	// no recommendations, but the context is still reported.
	if len(genres) > 0 {
		query, err := h.composer.EncodeGenreQuery(r.Context(), genres)
		if err != nil {
			respondRecError(w, err)
			return
		}
		ids, err := h.engine.Similar(r.Context(), query, capK(req.K, h.cfg.MaxTopK))
		if err != nil {
			respondRecError(w, err)
			return
		}
		resp.MovieIDs = ids
	}

	respondData(w, http.StatusOK, resp, start)
}

// UserRecommendations handles GET /api/v1/recommendations/user/{userID}.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")
	k := capK(getIntParam(r, "k", 0), h.cfg.MaxTopK)

	ids, err := h.engine.ForUser(r.Context(), userID, k)
	if err != nil {
		respondRecError(w, err)
		return
	}

	respondData(w, http.StatusOK, UserRecommendationsResponse{MovieIDs: ids}, start)
}

// Preferences handles POST /api/v1/users/{userID}/preferences. It
// cold-starts the user's profile from liked movies.
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")

	var req PreferencesRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	result, err := h.blender.ColdStart(r.Context(), userID, req.MovieIDs)
	if err != nil {
		respondRecError(w, err)
		return
	}
	h.engine.InvalidateUser(userID)

	respondData(w, http.StatusOK, result, start)
}

// Ratings handles POST /api/v1/users/{userID}/ratings. A single rating
// is buffered through the pipeline; a batch body or ?immediate=true
// applies the warm update synchronously.
func (h *Handler) Ratings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID := chi.URLParam(r, "userID")

	var req RatingRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	immediate := r.URL.Query().Get("immediate") == "true" || len(req.Ratings) > 0

	if immediate {
		batch := make([]profile.Rating, 0, len(req.Ratings)+1)
		for _, entry := range req.Ratings {
			batch = append(batch, profile.Rating{ItemID: entry.MovieID, Rating: entry.Rating})
		}
		if req.MovieID != "" {
			batch = append(batch, profile.Rating{ItemID: req.MovieID, Rating: req.Rating})
		}

		updated, err := h.blender.WarmUpdate(r.Context(), userID, batch)
		if err != nil {
			respondRecError(w, err)
			return
		}
		h.engine.InvalidateUser(userID)

		respondData(w, http.StatusOK, WarmUpdateResponse{
			UserID:    userID,
			Dimension: updated.Dim(),
		}, start)
		return
	}

	if req.MovieID == "" || req.Rating <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT",
			"movie_id and a positive rating are required", nil)
		return
	}

	ev := ratings.Event{UserID: userID, ItemID: req.MovieID, Rating: req.Rating}
	if err := h.publisher.Publish(r.Context(), ev); err != nil {
		respondRecError(w, err)
		return
	}

	respondData(w, http.StatusAccepted, RatingAccepted{Buffered: true}, start)
}

// IngestItem handles POST /api/v1/items/{itemID}/embedding. Ingestion
// is idempotent; re-posting an indexed item is a no-op success.
func (h *Handler) IngestItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	itemID := chi.URLParam(r, "itemID")

	v, err := h.ingestor.Ensure(r.Context(), itemID)
	if err != nil {
		respondRecError(w, err)
		return
	}

	respondData(w, http.StatusOK, IngestResponse{MovieID: itemID, Dimension: v.Dim()}, start)
}
