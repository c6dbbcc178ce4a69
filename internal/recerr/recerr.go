// Moodscreen - Mood and Context Aware Movie Recommendations
// Copyright 2026 Moodscreen Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moodscreen/moodscreen

// Package recerr defines the structured error kinds surfaced by the
// recommendation core. Every external-facing failure carries a Kind so
// the API layer can map it to a status code without string matching.
package recerr

import (
	"errors"
	"fmt"
)

// Kind classifies a recommendation core failure.
type Kind int

const (
	// KindUnknown is the zero value for errors that carry no kind.
	KindUnknown Kind = iota
	// KindInvalidInput indicates malformed or missing required fields.
	KindInvalidInput
	// KindNotFound indicates an item, user, or embedding absent where required.
	KindNotFound
	// KindUpstreamFailure indicates a metadata/weather/encoder/index call
	// failed after collaborator-internal retries.
	KindUpstreamFailure
	// KindNoDataProduced indicates all inputs were valid but no usable
	// signal resulted (e.g. zero valid embeddings after filtering).
	KindNoDataProduced
)

// String returns a stable identifier for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindUpstreamFailure:
		return "upstream_failure"
	case KindNoDataProduced:
		return "no_data_produced"
	default:
		return "unknown"
	}
}

// Error is a kinded error with an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidInput returns a KindInvalidInput error.
func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a KindNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Upstream wraps err as a KindUpstreamFailure error.
func Upstream(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

// NoData returns a KindNoDataProduced error.
func NoData(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNoDataProduced, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, unwrapping as needed.
// Returns KindUnknown for nil and unkinded errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
