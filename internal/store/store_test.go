// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

package store

import (
	"testing"

	"github.com/moodscreen/moodscreen/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutAndGetSourceText(t *testing.T) {
	s := newTestStore(t)

	if err := s.PutSourceText("550", "Fight Club An insomniac office worker. Drama"); err != nil {
		t.Fatalf("PutSourceText() error = %v", err)
	}

	text, found, err := s.GetSourceText("550")
	if err != nil {
		t.Fatalf("GetSourceText() error = %v", err)
	}
	if !found {
		t.Fatal("GetSourceText() found = false, want true")
	}
	if text != "Fight Club An insomniac office worker. Drama" {
		t.Errorf("GetSourceText() = %q", text)
	}
}

func TestGetSourceTextMissing(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.GetSourceText("nope")
	if err != nil {
		t.Fatalf("GetSourceText() error = %v", err)
	}
	if found {
		t.Error("GetSourceText() found = true for missing key")
	}
}

func TestPutSourceTextReplaces(t *testing.T) {
	s := newTestStore(t)

	if err := s.PutSourceText("1", "old"); err != nil {
		t.Fatalf("PutSourceText() error = %v", err)
	}
	if err := s.PutSourceText("1", "new"); err != nil {
		t.Fatalf("PutSourceText() error = %v", err)
	}

	text, _, err := s.GetSourceText("1")
	if err != nil {
		t.Fatalf("GetSourceText() error = %v", err)
	}
	if text != "new" {
		t.Errorf("GetSourceText() = %q, want new", text)
	}
}

func TestPutSourceTextEmptyID(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutSourceText("", "text"); err == nil {
		t.Error("PutSourceText(empty ID) expected error")
	}
}
