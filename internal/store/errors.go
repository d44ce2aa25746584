package store

import "errors"

var (
	// ErrNotFound is returned for absent records and for codes, tokens and
	// sessions that are used, revoked or expired. Callers cannot tell these apart.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a unique constraint (realm name,
	// username or client_id within a realm) is violated.
	ErrConflict = errors.New("record already exists")
)
