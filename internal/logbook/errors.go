package logbook

import "errors"

var (
	// ErrNotFound is returned when no log has the requested ID.
	ErrNotFound = errors.New("log not found")

	// ErrForbidden is returned when the log exists but belongs to another user.
	ErrForbidden = errors.New("log belongs to another user")
)
