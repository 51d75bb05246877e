package health

import "context"

// SearchPinger checks search backend availability.
type SearchPinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter reports whether the search circuit breaker is open.
type BreakerReporter interface {
	Open() bool
}
