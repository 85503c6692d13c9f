package repository

import "errors"

// Typed sentinels so call sites can tell "no such row" apart from a backend
// failure instead of pattern-matching on error strings.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate name")
)
