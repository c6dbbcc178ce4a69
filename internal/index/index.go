// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package index defines the namespaced vector index abstraction and
// its implementations: an in-process index and a Pinecone-style REST
// client.
package index

import (
	"context"

	"github.com/moodscreen/moodscreen/internal/vector"
)

// Namespaces partition the index. Item vectors live in the default
// namespace, user profile vectors in "users".
const (
	NamespaceItems = ""
	NamespaceUsers = "users"
)

// Record is a vector stored under an ID.
type Record struct {
	ID     string
	Values vector.Vector
}

// Match is a query result: an ID with its similarity score, higher is
// more similar.
type Match struct {
	ID    string
	Score float64
}

// Index is a namespaced vector store with similarity search.
//
// Fetch returns only the IDs found; missing IDs are absent from the
// result map, never an error.
type Index interface {
	Upsert(ctx context.Context, namespace string, records []Record) error
	Fetch(ctx context.Context, namespace string, ids []string) (map[string]vector.Vector, error)
	Query(ctx context.Context, namespace string, v vector.Vector, topK int) ([]Match, error)
}
