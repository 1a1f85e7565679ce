package storage

import "errors"

// Common storage errors
var (
	// ErrEntryNotFound indicates that a snapshot row was not found
	ErrEntryNotFound = errors.New("entry not found")

	// ErrCommitNotFound indicates that no commit chain exists for the user yet
	ErrCommitNotFound = errors.New("commit chain not found")

	// ErrDuplicateEntry indicates that a write violated a natural-key
	// uniqueness constraint
	ErrDuplicateEntry = errors.New("duplicate entry")
)
