// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package api

import (
	"time"

	"github.com/moodscreen/moodscreen/internal/emotion"
	"github.com/moodscreen/moodscreen/internal/mood"
	"github.com/moodscreen/moodscreen/internal/weather"
)

// APIResponse is the JSON envelope shared by all endpoints.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a structured error payload.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MoodRequest is the body of POST /recommendations/mood.
type MoodRequest struct {
	Text  string `json:"text" validate:"required"`
	Emoji string `json:"emoji,omitempty"`
	K     int    `json:"k,omitempty" validate:"gte=0"`
}

// MoodResponse carries the mood analysis alongside the recommendations.
type MoodResponse struct {
	Emotions []emotion.Score   `json:"emotions"`
	Genres   []mood.GenreScore `json:"genres"`
	MovieIDs []string          `json:"movie_ids"`
}

// WeatherRequest is the body of POST /recommendations/weather.
type WeatherRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
	K   int     `json:"k,omitempty" validate:"gte=0"`
}

// WeatherResponse carries the resolved weather context and the
// recommendations.
type WeatherResponse struct {
	WeatherCondition string            `json:"weather_condition"`
	TimeSlot         weather.TimeSlot  `json:"time_slot"`
	Genres           []mood.GenreScore `json:"genres"`
	MovieIDs         []string          `json:"movie_ids"`
}

// UserRecommendationsResponse is the body of
// GET /recommendations/user/{userID}.
type UserRecommendationsResponse struct {
	MovieIDs []string `json:"movie_ids"`
}

// PreferencesRequest is the body of POST /users/{userID}/preferences.
type PreferencesRequest struct {
	MovieIDs []string `json:"movie_ids" validate:"required,min=1,dive,required"`
}

// RatingRequest is a single rating submission. Either a single rating
// or a Ratings batch must be present.
type RatingRequest struct {
	MovieID string        `json:"movie_id,omitempty"`
	Rating  float64       `json:"rating,omitempty"`
	Ratings []RatingEntry `json:"ratings,omitempty" validate:"omitempty,dive"`
}

// RatingEntry is one element of a batch rating submission.
type RatingEntry struct {
	MovieID string  `json:"movie_id" validate:"required"`
	Rating  float64 `json:"rating" validate:"gt=0"`
}

// RatingAccepted acknowledges a buffered rating event.
type RatingAccepted struct {
	Buffered bool `json:"buffered"`
}

// WarmUpdateResponse reports a synchronously applied profile update.
type WarmUpdateResponse struct {
	UserID    string `json:"user_id"`
	Dimension int    `json:"dimension"`
}

// IngestResponse is the body of POST /items/{itemID}/embedding.
type IngestResponse struct {
	MovieID   string `json:"movie_id"`
	Dimension int    `json:"dimension"`
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
