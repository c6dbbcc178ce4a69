// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package vector

import (
	"math"
	"testing"
)

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vector
		want bool
	}{
		{name: "empty", v: Vector{}, want: true},
		{name: "finite", v: Vector{1, -2.5, 0}, want: true},
		{name: "nan", v: Vector{1, math.NaN()}, want: false},
		{name: "positive inf", v: Vector{math.Inf(1)}, want: false},
		{name: "negative inf", v: Vector{0, math.Inf(-1)}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMean(t *testing.T) {
	got, err := Mean([]Vector{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("Mean() error = %v", err)
	}
	want := Vector{0.5, 0.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Mean()[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestMeanErrors(t *testing.T) {
	if _, err := Mean(nil); err == nil {
		t.Error("Mean(nil) expected error")
	}
	if _, err := Mean([]Vector{{1, 2}, {1}}); err == nil {
		t.Error("Mean() with mixed dimensions expected error")
	}
}

func TestWeightedAverage(t *testing.T) {
	// Ratings 5 and 1 over [2,0] and [0,2]: weights 5/6 and 1/6.
	got, err := WeightedAverage([]Vector{{2, 0}, {0, 2}}, []float64{5, 1})
	if err != nil {
		t.Fatalf("WeightedAverage() error = %v", err)
	}
	want := Vector{5.0 / 6.0 * 2.0, 1.0 / 6.0 * 2.0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("WeightedAverage()[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestWeightedAverageErrors(t *testing.T) {
	tests := []struct {
		name    string
		vs      []Vector
		weights []float64
	}{
		{name: "empty", vs: nil, weights: nil},
		{name: "length mismatch", vs: []Vector{{1}}, weights: []float64{1, 2}},
		{name: "zero weights", vs: []Vector{{1}, {2}}, weights: []float64{0, 0}},
		{name: "negative weight", vs: []Vector{{1}, {2}}, weights: []float64{1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := WeightedAverage(tt.vs, tt.weights); err == nil {
				t.Error("WeightedAverage() expected error")
			}
		})
	}
}

func TestBlend(t *testing.T) {
	// 0.7*fresh + 0.3*prior with a zero prior contributes only the fresh part.
	fresh := Vector{1, 2}
	prior := Vector{0, 0}
	got, err := Blend(fresh, prior, 0.7, 0.3)
	if err != nil {
		t.Fatalf("Blend() error = %v", err)
	}
	want := Vector{0.7, 1.4}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Blend()[%d] = %f, want %f", i, got[i], want[i])
		}
	}

	if _, err := Blend(Vector{1}, Vector{1, 2}, 0.5, 0.5); err == nil {
		t.Error("Blend() with mismatched dimensions expected error")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{name: "identical", a: Vector{1, 2, 3}, b: Vector{1, 2, 3}, want: 1},
		{name: "orthogonal", a: Vector{1, 0}, b: Vector{0, 1}, want: 0},
		{name: "opposite", a: Vector{1, 0}, b: Vector{-1, 0}, want: -1},
		{name: "zero vector", a: Vector{0, 0}, b: Vector{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("CosineSimilarity() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}
