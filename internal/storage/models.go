package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SessionRecord is one stored screening session. StateJSON is the
// serialised screening state; Step duplicates its step name for listing.
type SessionRecord struct {
	ID        string
	Step      string
	StateJSON string
	CreatedAt time.Time
	UpdatedAt time.Time
}
