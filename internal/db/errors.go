package db

import "errors"

// Sentinel errors for search backends.
var (
	ErrUnavailable   = errors.New("db: search backend unavailable")
	ErrIndexNotFound = errors.New("db: index not found")
	ErrBadQuery      = errors.New("db: query rejected")
)

// Op names identify the backend call in error context.
const (
	OpSearch  = "SEARCH"
	OpPing    = "PING"
	OpFTQuery = "FT.SEARCH"
	OpLoad    = "LOAD"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
