// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package weather maps current conditions and local time of day to a
// ranked genre list.
package weather

import (
	"context"
	"time"

	"github.com/moodscreen/moodscreen/internal/mood"
)

// TimeSlot is a bucket of the local day.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
	SlotNight     TimeSlot = "night"
)

// Observation is a current-conditions reading from the weather source.
type Observation struct {
	// Condition is the source's main condition string, e.g. "Clear",
	// "Clouds", "Rain", "Snow".
	Condition string

	// ObservedAt is the reading's timestamp in epoch seconds.
	ObservedAt int64

	// UTCOffsetSeconds is the location's offset from UTC in seconds.
	UTCOffsetSeconds int
}

// Source fetches current weather for a coordinate.
type Source interface {
	Current(ctx context.Context, lat, lon float64) (Observation, error)
}

// Context is the derived weather context for a request. Never stored.
type Context struct {
	Condition string   `json:"weather_condition"`
	TimeSlot  TimeSlot `json:"time_slot"`
}

type slotKey struct {
	condition string
	slot      TimeSlot
}

// conditionGenres maps (condition, slot) pairs to pre-ranked genre
// weights. Weights per entry sum to 1 and the lists are already
// ordered; lookup is a passthrough with no further scoring.
var conditionGenres = map[slotKey][]mood.GenreScore{
	{"Clear", SlotMorning}:   {{Genre: "Happy", Score: 0.6}, {Genre: "Uplifting", Score: 0.3}, {Genre: "Adventurous", Score: 0.1}},
	{"Clear", SlotAfternoon}: {{Genre: "Adventurous", Score: 0.5}, {Genre: "Uplifting", Score: 0.4}, {Genre: "Reflective", Score: 0.1}},
	{"Clear", SlotEvening}:   {{Genre: "Romantic", Score: 0.5}, {Genre: "Reflective", Score: 0.3}, {Genre: "Light-hearted", Score: 0.2}},
	{"Clear", SlotNight}:     {{Genre: "Reflective", Score: 0.4}, {Genre: "Suspense", Score: 0.3}, {Genre: "Emotional", Score: 0.3}},

	{"Clouds", SlotMorning}:   {{Genre: "Reflective", Score: 0.5}, {Genre: "Emotional", Score: 0.3}, {Genre: "Light-hearted", Score: 0.2}},
	{"Clouds", SlotAfternoon}: {{Genre: "Reflective", Score: 0.4}, {Genre: "Uplifting", Score: 0.4}, {Genre: "Emotional", Score: 0.2}},
	{"Clouds", SlotEvening}:   {{Genre: "Emotional", Score: 0.6}, {Genre: "Reflective", Score: 0.3}, {Genre: "Sad", Score: 0.1}},
	{"Clouds", SlotNight}:     {{Genre: "Sad", Score: 0.5}, {Genre: "Suspense", Score: 0.3}, {Genre: "Dark", Score: 0.2}},

	{"Rain", SlotMorning}:   {{Genre: "Sad", Score: 0.5}, {Genre: "Reflective", Score: 0.3}, {Genre: "Suspense", Score: 0.2}},
	{"Rain", SlotAfternoon}: {{Genre: "Reflective", Score: 0.4}, {Genre: "Emotional", Score: 0.3}, {Genre: "Sad", Score: 0.3}},
	{"Rain", SlotEvening}:   {{Genre: "Suspense", Score: 0.5}, {Genre: "Tense", Score: 0.3}, {Genre: "Dark", Score: 0.2}},
	{"Rain", SlotNight}:     {{Genre: "Tense", Score: 0.5}, {Genre: "Suspense", Score: 0.3}, {Genre: "Dark", Score: 0.2}},

	{"Snow", SlotMorning}:   {{Genre: "Uplifting", Score: 0.5}, {Genre: "Reflective", Score: 0.3}, {Genre: "Emotional", Score: 0.2}},
	{"Snow", SlotAfternoon}: {{Genre: "Light-hearted", Score: 0.4}, {Genre: "Uplifting", Score: 0.3}, {Genre: "Reflective", Score: 0.3}},
	{"Snow", SlotEvening}:   {{Genre: "Emotional", Score: 0.5}, {Genre: "Reflective", Score: 0.3}, {Genre: "Sad", Score: 0.2}},
	{"Snow", SlotNight}:     {{Genre: "Reflective", Score: 0.4}, {Genre: "Sad", Score: 0.3}, {Genre: "Emotional", Score: 0.3}},
}

// SlotForHour buckets a local hour into a time slot. The boundaries
// are exact contract: morning [6,12), afternoon [12,18), evening
// [18,22), night otherwise.
func SlotForHour(hour int) TimeSlot {
	switch {
	case hour >= 6 && hour < 12:
		return SlotMorning
	case hour >= 12 && hour < 18:
		return SlotAfternoon
	case hour >= 18 && hour < 22:
		return SlotEvening
	default:
		return SlotNight
	}
}

// LocalHour applies the source-supplied UTC offset to the observation
// timestamp. No timezone-database lookup beyond the numeric offset.
func LocalHour(observedAt int64, utcOffsetSeconds int) int {
	loc := time.FixedZone("local", utcOffsetSeconds)
	return time.Unix(observedAt, 0).In(loc).Hour()
}

// Mapper derives the weather context and its genre list for a
// coordinate.
type Mapper struct {
	source Source
}

// NewMapper creates a Mapper on top of the given source.
func NewMapper(source Source) *Mapper {
	return &Mapper{source: source}
}

// Map fetches current conditions and returns the weather context with
// its pre-ranked genres. An unmapped (condition, slot) pair yields an
// empty genre list, not an error.
func (m *Mapper) Map(ctx context.Context, lat, lon float64) (Context, []mood.GenreScore, error) {
	obs, err := m.source.Current(ctx, lat, lon)
	if err != nil {
		return Context{}, nil, err
	}

	slot := SlotForHour(LocalHour(obs.ObservedAt, obs.UTCOffsetSeconds))
	wctx := Context{Condition: obs.Condition, TimeSlot: slot}

	genres := conditionGenres[slotKey{obs.Condition, slot}]
	out := make([]mood.GenreScore, len(genres))
	copy(out, genres)
	return wctx, out, nil
}
