package store

import "errors"

// Sentinel errors returned by repositories. Handlers map each to a
// distinct response category.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email is already registered")

	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username is already taken")

	// ErrUnavailable wraps storage failures that are not a missing record
	// or a uniqueness conflict.
	ErrUnavailable = errors.New("storage unavailable")
)
