package docsearch

import (
	"errors"

	"github.com/gitdocs/docsearch/internal/db"
)

// Sentinel errors re-exported from the backend layer.
// Use errors.Is() to check.
var (
	ErrUnavailable   = db.ErrUnavailable
	ErrIndexNotFound = db.ErrIndexNotFound
	ErrBadQuery      = db.ErrBadQuery

	// ErrNoBackend is returned by New when no backend option was given.
	ErrNoBackend = errors.New("docsearch: backend required (use WithElastic, WithRedis or WithMemory)")
)
