// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package embedding

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/moodscreen/moodscreen/internal/emotion"
	"github.com/moodscreen/moodscreen/internal/mood"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// mapEncoder returns a fixed embedding per exact prompt.
type mapEncoder struct {
	embeddings map[string]vector.Vector
}

func (m *mapEncoder) Encode(_ context.Context, text string) (vector.Vector, error) {
	v, ok := m.embeddings[text]
	if !ok {
		return nil, errors.New("unexpected prompt: " + text)
	}
	return v, nil
}

func TestPromptRendering(t *testing.T) {
	if got := UserPrompt("rainy day blues"); got != "User input: rainy day blues" {
		t.Errorf("UserPrompt() = %q", got)
	}

	emotions := []emotion.Score{
		{Label: "sadness", Score: 0.8},
		{Label: "grief", Score: 0.4},
		{Label: "neutral", Score: 0.2},
		{Label: "joy", Score: 0.1},
	}
	if got := EmotionPrompt(emotions); got != "The user is feeling sadness, grief, neutral." {
		t.Errorf("EmotionPrompt() = %q", got)
	}

	genres := []mood.GenreScore{
		{Genre: "Sad", Score: 0.9},
		{Genre: "Emotional", Score: 0.5},
		{Genre: "Reflective", Score: 0.3},
		{Genre: "Dark", Score: 0.1},
	}
	if got := GenrePrompt(genres); got != "Recommended genres are Sad, Emotional, Reflective." {
		t.Errorf("GenrePrompt() = %q", got)
	}
}

func TestPromptRenderingShortLists(t *testing.T) {
	if got := EmotionPrompt([]emotion.Score{{Label: "joy"}}); got != "The user is feeling joy." {
		t.Errorf("EmotionPrompt() = %q", got)
	}
	if got := GenrePrompt([]mood.GenreScore{{Genre: "Happy"}, {Genre: "Uplifting"}}); !strings.Contains(got, "Happy, Uplifting") {
		t.Errorf("GenrePrompt() = %q", got)
	}
}

func TestComposeWeightedCombination(t *testing.T) {
	emotions := []emotion.Score{{Label: "joy"}}
	genres := []mood.GenreScore{{Genre: "Happy"}}

	enc := &mapEncoder{embeddings: map[string]vector.Vector{
		UserPrompt("feeling great"): {1, 0},
		EmotionPrompt(emotions):     {0, 1},
		GenrePrompt(genres):         {1, 1},
	}}

	got, err := NewComposer(enc).Compose(context.Background(), "feeling great", emotions, genres)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	// 0.4*[1,0] + 0.3*[0,1] + 0.3*[1,1] = [0.7, 0.6]
	want := vector.Vector{0.7, 0.6}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Compose()[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestComposeDimensionMismatch(t *testing.T) {
	emotions := []emotion.Score{{Label: "joy"}}
	genres := []mood.GenreScore{{Genre: "Happy"}}

	enc := &mapEncoder{embeddings: map[string]vector.Vector{
		UserPrompt("text"):      {1, 0},
		EmotionPrompt(emotions): {0, 1, 0},
		GenrePrompt(genres):     {1, 1},
	}}

	if _, err := NewComposer(enc).Compose(context.Background(), "text", emotions, genres); err == nil {
		t.Error("Compose() expected dimension mismatch error")
	}
}

func TestComposePropagatesEncoderError(t *testing.T) {
	enc := &mapEncoder{embeddings: map[string]vector.Vector{}}
	_, err := NewComposer(enc).Compose(context.Background(), "text",
		[]emotion.Score{{Label: "joy"}}, []mood.GenreScore{{Genre: "Happy"}})
	if err == nil {
		t.Error("Compose() expected error")
	}
}

func TestComposeDeterministic(t *testing.T) {
	emotions := []emotion.Score{{Label: "joy"}}
	genres := []mood.GenreScore{{Genre: "Happy"}}
	enc := &mapEncoder{embeddings: map[string]vector.Vector{
		UserPrompt("same"):      {0.2, 0.4},
		EmotionPrompt(emotions): {0.6, 0.8},
		GenrePrompt(genres):     {1.0, 0.0},
	}}
	c := NewComposer(enc)

	first, err := c.Compose(context.Background(), "same", emotions, genres)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	second, err := c.Compose(context.Background(), "same", emotions, genres)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Compose() not deterministic at %d: %f vs %f", i, first[i], second[i])
		}
	}
}
