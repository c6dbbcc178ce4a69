// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package embedding composes query embeddings from mood signals: the
// user's free text, the selected emotions, and the ranked genres are
// rendered into short phrases, encoded, and merged with fixed convex
// weights.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/moodscreen/moodscreen/internal/emotion"
	"github.com/moodscreen/moodscreen/internal/encoder"
	"github.com/moodscreen/moodscreen/internal/mood"
	"github.com/moodscreen/moodscreen/internal/recerr"
	"github.com/moodscreen/moodscreen/internal/vector"
)

// Convex combination weights for the query embedding. Tunable
// constants, not data-dependent.
const (
	weightText    = 0.4
	weightEmotion = 0.3
	weightGenre   = 0.3
)

// promptLabels is how many emotion/genre labels each prompt carries.
const promptLabels = 3

// UserPrompt renders the free-text phrase.
func UserPrompt(text string) string {
	return fmt.Sprintf("User input: %s", text)
}

// EmotionPrompt renders the selected emotion labels as a phrase.
func EmotionPrompt(emotions []emotion.Score) string {
	labels := make([]string, 0, promptLabels)
	for _, e := range emotions {
		if len(labels) == promptLabels {
			break
		}
		labels = append(labels, e.Label)
	}
	return fmt.Sprintf("The user is feeling %s.", strings.Join(labels, ", "))
}

// GenrePrompt renders the top genre labels as a phrase.
func GenrePrompt(genres []mood.GenreScore) string {
	labels := make([]string, 0, promptLabels)
	for _, g := range genres {
		if len(labels) == promptLabels {
			break
		}
		labels = append(labels, g.Genre)
	}
	return fmt.Sprintf("Recommended genres are %s.", strings.Join(labels, ", "))
}

// Composer builds query embeddings on top of a text encoder.
type Composer struct {
	enc encoder.TextEncoder
}

// NewComposer creates a Composer.
func NewComposer(enc encoder.TextEncoder) *Composer {
	return &Composer{enc: enc}
}

// Compose encodes the three prompt phrases concurrently and returns
// 0.4*text + 0.3*emotion + 0.3*genre. All three embeddings must share
// one dimension. Pure given a deterministic encoder.
func (c *Composer) Compose(ctx context.Context, text string, emotions []emotion.Score, genres []mood.GenreScore) (vector.Vector, error) {
	prompts := []string{
		UserPrompt(text),
		EmotionPrompt(emotions),
		GenrePrompt(genres),
	}

	embeddings, err := c.encodeAll(ctx, prompts)
	if err != nil {
		return nil, err
	}

	textEmb, emotionEmb, genreEmb := embeddings[0], embeddings[1], embeddings[2]
	if textEmb.Dim() != emotionEmb.Dim() || textEmb.Dim() != genreEmb.Dim() {
		return nil, recerr.Upstream(nil, "embedding dimension mismatch: %d/%d/%d",
			textEmb.Dim(), emotionEmb.Dim(), genreEmb.Dim())
	}

	out := make(vector.Vector, textEmb.Dim())
	for i := range out {
		out[i] = weightText*textEmb[i] + weightEmotion*emotionEmb[i] + weightGenre*genreEmb[i]
	}
	return out, nil
}

// EncodeGenreQuery encodes just the genre phrase. The weather path has
// no emotion signal, so its query vector is the genre phrase alone.
func (c *Composer) EncodeGenreQuery(ctx context.Context, genres []mood.GenreScore) (vector.Vector, error) {
	return c.enc.Encode(ctx, GenrePrompt(genres))
}

// encodeAll runs the encoder calls concurrently, bounded by the
// request context. The first error wins.
func (c *Composer) encodeAll(ctx context.Context, prompts []string) ([]vector.Vector, error) {
	embeddings := make([]vector.Vector, len(prompts))
	errs := make([]error, len(prompts))

	var wg sync.WaitGroup
	for i, prompt := range prompts {
		wg.Add(1)
		go func(i int, prompt string) {
			defer wg.Done()
			embeddings[i], errs[i] = c.enc.Encode(ctx, prompt)
		}(i, prompt)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return embeddings, nil
}
