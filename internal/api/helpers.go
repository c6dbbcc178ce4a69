// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/moodscreen/moodscreen/internal/logging"
	"github.com/moodscreen/moodscreen/internal/mood"
	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent
// log injection. Newlines and other control characters could otherwise
// forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData sends a success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	respondJSON(w, status, &APIResponse{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: Metadata{
			Timestamp: time.Now(),
		},
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondRecError maps a recommendation core error to an HTTP status
// and sends the error envelope.
func respondRecError(w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	respondError(w, status, code, err.Error(), err)
}

// statusForError maps error kinds to HTTP status codes and API error
// codes.
func statusForError(err error) (int, string) {
	switch recerr.KindOf(err) {
	case recerr.KindInvalidInput:
		return http.StatusBadRequest, "INVALID_INPUT"
	case recerr.KindNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case recerr.KindNoDataProduced:
		return http.StatusUnprocessableEntity, "NO_DATA_PRODUCED"
	case recerr.KindUpstreamFailure:
		return http.StatusBadGateway, "UPSTREAM_FAILURE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeJSONBody decodes a request body, rejecting unknown garbage
// with a 400.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", err)
		return false
	}
	return true
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// capK clamps a requested result count to the configured maximum. A
// non-positive k is passed through for the engine to default.
func capK(k, maxK int) int {
	if maxK > 0 && k > maxK {
		return maxK
	}
	return k
}

// roundGenreScores rounds displayed genre scores to three decimals.
// The raw scores still drive the embedding; only the response is
// rounded.
func roundGenreScores(genres []mood.GenreScore) []mood.GenreScore {
	rounded := make([]mood.GenreScore, len(genres))
	for i, g := range genres {
		rounded[i] = mood.GenreScore{
			Genre: g.Genre,
			Score: math.Round(g.Score*1000) / 1000,
		}
	}
	return rounded
}
