package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a record with the same uuid exists.
	ErrConflict = errors.New("record already exists")
)

// ValidationError is a write or query the store refuses to run.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// now returns the current UTC time in the timestamp format stored on records.
func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
