package tmdb

import (
	"errors"
	"fmt"
)

// Sentinel errors for terminal upstream failures. Callers match with
// errors.Is; all are returned eris-wrapped with call context.
var (
	// ErrUnavailable means the upstream could not be reached at the
	// network level after retries were exhausted.
	ErrUnavailable = errors.New("tmdb: upstream unavailable")

	// ErrMalformed means the upstream response body was not valid JSON.
	ErrMalformed = errors.New("tmdb: malformed response")

	// ErrNotFound means the upstream returned 404 for a direct detail
	// lookup.
	ErrNotFound = errors.New("tmdb: not found")
)

// StatusError is a non-2xx final response after retries. It carries the
// upstream status and body for diagnostics.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: upstream status %d: %s", e.Status, e.Body)
}
