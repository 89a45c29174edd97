package store

import "errors"

// Predefined errors for the store layer. Implementations return these (possibly
// wrapped) so services can map them without knowing the backend.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a uniqueness conflict, e.g. a duplicate pending friend request.
	ErrConflict = errors.New("conflict")
)
