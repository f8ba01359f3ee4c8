package domain

import "errors"

// Sentinel errors shared across the actor, store, and service layers.
// Callers match them with errors.Is; the api layer maps them to HTTP
// status codes.
var (
	// ErrNotFound is returned when an operation references a session
	// id with no record.
	ErrNotFound = errors.New("session not found")

	// ErrValidation is returned when a required input field is missing
	// or malformed.
	ErrValidation = errors.New("invalid input")

	// ErrUpstream is returned when a remote provider returned
	// non-success or was unreachable.
	ErrUpstream = errors.New("upstream provider failure")

	// ErrVersionConflict is returned by store drivers when a
	// concurrent writer bumped the record version first. The actor's
	// per-id serialization makes this unreachable in-process; it can
	// only surface when two processes share one redis store.
	ErrVersionConflict = errors.New("session version conflict")
)
