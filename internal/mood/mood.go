// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package mood turns free-text mood and an optional emoji hint into a
// ranked genre-affinity list.
package mood

import (
	"context"
	"sort"
	"strings"

	"github.com/moodscreen/moodscreen/internal/emotion"
	"github.com/moodscreen/moodscreen/internal/recerr"
)

const (
	// topEmotions is how many classifier emotions contribute to genre
	// scores. Lower-ranked emotions never influence the result.
	topEmotions = 3

	// topGenres caps the ranked genre output.
	topGenres = 4

	// emojiBoost is added per emoji-mapped genre, clamped to 1.0
	// immediately after each addition.
	emojiBoost = 0.1
)

// GenreScore is a genre with its accumulated affinity score.
type GenreScore struct {
	Genre string  `json:"genre"`
	Score float64 `json:"score"`
}

type genreWeight struct {
	genre  string
	weight float64
}

// emotionGenres maps each classifier emotion label to weighted genres.
// Scores accumulate as emotion_score * weight, so a genre reachable
// from multiple top emotions compounds.
var emotionGenres = map[string][]genreWeight{
	"joy":            {{"Happy", 0.5}, {"Uplifting", 0.3}, {"Light-hearted", 0.2}},
	"anger":          {{"Tense", 0.6}, {"Dark", 0.4}},
	"sadness":        {{"Sad", 0.5}, {"Emotional", 0.3}, {"Reflective", 0.2}},
	"surprise":       {{"Adventurous", 0.6}, {"Suspense", 0.4}},
	"love":           {{"Romantic", 0.6}, {"Emotional", 0.4}},
	"fear":           {{"Scary", 0.6}, {"Tense", 0.4}},
	"disgust":        {{"Dark", 0.6}, {"Tense", 0.4}},
	"neutral":        {{"Reflective", 0.6}, {"Emotional", 0.4}},
	"admiration":     {{"Uplifting", 0.6}, {"Emotional", 0.4}},
	"approval":       {{"Uplifting", 0.6}, {"Light-hearted", 0.4}},
	"caring":         {{"Emotional", 0.6}, {"Reflective", 0.4}},
	"curiosity":      {{"Adventurous", 0.6}, {"Light-hearted", 0.4}},
	"desire":         {{"Romantic", 0.6}, {"Emotional", 0.4}},
	"embarrassment":  {{"Reflective", 0.6}, {"Sad", 0.4}},
	"excitement":     {{"Happy", 0.6}, {"Adventurous", 0.4}},
	"gratitude":      {{"Uplifting", 0.6}, {"Light-hearted", 0.4}},
	"nervousness":    {{"Tense", 0.6}, {"Suspense", 0.4}},
	"optimism":       {{"Uplifting", 0.6}, {"Happy", 0.4}},
	"pride":          {{"Happy", 0.6}, {"Uplifting", 0.4}},
	"realization":    {{"Reflective", 0.6}, {"Emotional", 0.4}},
	"relief":         {{"Light-hearted", 0.6}, {"Uplifting", 0.4}},
	"remorse":        {{"Sad", 0.6}, {"Reflective", 0.4}},
	"confusion":      {{"Suspense", 0.6}, {"Reflective", 0.4}},
	"grief":          {{"Sad", 0.6}, {"Emotional", 0.4}},
	"annoyance":      {{"Tense", 0.6}, {"Dark", 0.4}},
	"disappointment": {{"Sad", 0.6}, {"Reflective", 0.4}},
	"amusement":      {{"Light-hearted", 0.6}, {"Happy", 0.4}},
}

// emojiGenres maps emoji tokens to the genres they boost. Tokens are
// matched case-insensitively; unknown tokens are a no-op.
var emojiGenres = map[string][]string{
	"happy":    {"Happy", "Uplifting", "Light-hearted"},
	"sad":      {"Sad", "Emotional", "Reflective"},
	"angry":    {"Tense", "Dark"},
	"tired":    {"Happy", "Light-hearted"},
	"love":     {"Romantic", "Emotional"},
	"cool":     {"Adventurous", "Light-hearted"},
	"shocked":  {"Suspense", "Tense"},
	"thinking": {"Reflective", "Emotional"},
}

// Scorer converts mood text and an emoji hint into ranked genres.
type Scorer struct {
	classifier emotion.Classifier
}

// NewScorer creates a Scorer on top of the given classifier.
func NewScorer(classifier emotion.Classifier) *Scorer {
	return &Scorer{classifier: classifier}
}

// Analyze classifies the text, accumulates genre affinities from the
// top emotions, applies the emoji boost, and returns the ranked genres
// alongside the selected emotions.
//
// Empty text is allowed; the classifier still produces a distribution.
func (s *Scorer) Analyze(ctx context.Context, text, emoji string) ([]GenreScore, []emotion.Score, error) {
	scores, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return nil, nil, err
	}
	if len(scores) == 0 {
		return nil, nil, recerr.NoData("classifier returned no emotions")
	}

	top := topEmotionScores(scores)
	acc := accumulateGenres(top)
	acc = applyEmojiBoost(acc, emoji)
	ranked := rankGenres(acc)

	return ranked, top, nil
}

// topEmotionScores stable-sorts by descending score and truncates to
// the top emotions. Ties keep the classifier's return order.
func topEmotionScores(scores []emotion.Score) []emotion.Score {
	sorted := make([]emotion.Score, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > topEmotions {
		sorted = sorted[:topEmotions]
	}
	return sorted
}

// orderedScores accumulates per-genre scores while preserving first
// contribution order for deterministic ranking.
type orderedScores struct {
	scores map[string]float64
	order  []string
}

func newOrderedScores() *orderedScores {
	return &orderedScores{scores: make(map[string]float64)}
}

func (o *orderedScores) add(genre string, delta float64) {
	if _, seen := o.scores[genre]; !seen {
		o.order = append(o.order, genre)
	}
	o.scores[genre] += delta
}

func (o *orderedScores) clamp(genre string, max float64) {
	if o.scores[genre] > max {
		o.scores[genre] = max
	}
}

func accumulateGenres(top []emotion.Score) *orderedScores {
	acc := newOrderedScores()
	for _, emo := range top {
		// Unknown labels contribute nothing.
		for _, gw := range emotionGenres[strings.ToLower(emo.Label)] {
			acc.add(gw.genre, emo.Score*gw.weight)
		}
	}
	return acc
}

func applyEmojiBoost(acc *orderedScores, emoji string) *orderedScores {
	for _, genre := range emojiGenres[strings.ToLower(emoji)] {
		acc.add(genre, emojiBoost)
		acc.clamp(genre, 1.0)
	}
	return acc
}

// rankGenres sorts by descending score, ties broken by first
// contribution order, and truncates to the top genres. Raw scores are
// kept; rounding is a display concern.
func rankGenres(acc *orderedScores) []GenreScore {
	ranked := make([]GenreScore, 0, len(acc.order))
	for _, genre := range acc.order {
		ranked = append(ranked, GenreScore{Genre: genre, Score: acc.scores[genre]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > topGenres {
		ranked = ranked[:topGenres]
	}
	return ranked
}
