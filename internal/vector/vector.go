// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package vector provides the embedding vector math used across the
// recommendation core: means, rating-weighted averages, convex blends,
// and cosine similarity.
package vector

import (
	"fmt"
	"math"
)

// Vector is a fixed-dimension embedding vector.
type Vector []float64

// Dim returns the vector dimension.
func (v Vector) Dim() int {
	return len(v)
}

// IsFinite reports whether every component is a finite number.
// Vectors with NaN or Inf components must not be stored or compared.
func (v Vector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of v.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Mean computes the unweighted arithmetic mean of the given vectors.
// All vectors must share one dimension.
func Mean(vs []Vector) (Vector, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("mean of zero vectors")
	}

	dim := vs[0].Dim()
	out := make(Vector, dim)
	for _, v := range vs {
		if v.Dim() != dim {
			return nil, fmt.Errorf("dimension mismatch: %d != %d", v.Dim(), dim)
		}
		for i, x := range v {
			out[i] += x
		}
	}

	n := float64(len(vs))
	for i := range out {
		out[i] /= n
	}
	return out, nil
}

// WeightedAverage computes the weighted average of vs with the given
// weights, normalized to sum to 1. Items with larger weights pull the
// average further toward themselves.
func WeightedAverage(vs []Vector, weights []float64) (Vector, error) {
	if len(vs) == 0 {
		return nil, fmt.Errorf("weighted average of zero vectors")
	}
	if len(vs) != len(weights) {
		return nil, fmt.Errorf("got %d vectors but %d weights", len(vs), len(weights))
	}

	var total float64
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("negative weight %f", w)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("weights sum to zero")
	}

	dim := vs[0].Dim()
	out := make(Vector, dim)
	for i, v := range vs {
		if v.Dim() != dim {
			return nil, fmt.Errorf("dimension mismatch: %d != %d", v.Dim(), dim)
		}
		w := weights[i] / total
		for j, x := range v {
			out[j] += w * x
		}
	}
	return out, nil
}

// Blend computes wa*a + wb*b. Both vectors must share one dimension.
func Blend(a, b Vector, wa, wb float64) (Vector, error) {
	if a.Dim() != b.Dim() {
		return nil, fmt.Errorf("dimension mismatch: %d != %d", a.Dim(), b.Dim())
	}
	out := make(Vector, a.Dim())
	for i := range a {
		out[i] = wa*a[i] + wb*b[i]
	}
	return out, nil
}

// CosineSimilarity computes the cosine of the angle between a and b.
// Returns 0 for zero-magnitude vectors.
func CosineSimilarity(a, b Vector) (float64, error) {
	if a.Dim() != b.Dim() {
		return 0, fmt.Errorf("dimension mismatch: %d != %d", a.Dim(), b.Dim())
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
