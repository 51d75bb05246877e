// Package guard decorates a search executor with a circuit breaker, tracing and metrics.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gitdocs/docsearch/internal/db"
	"github.com/gitdocs/docsearch/internal/domain/search/query"
	"github.com/gitdocs/docsearch/internal/domain/search/response"
	"github.com/gitdocs/docsearch/internal/metrics"
)

const tracerName = "github.com/gitdocs/docsearch/internal/db/guard"

// Compile-time check: Executor implements db.Executor.
var _ db.Executor = (*Executor)(nil)

// Settings tune the circuit breaker.
type Settings struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears closed-state counts; 0 never clears.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
}

// DefaultSettings returns conservative breaker settings.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Executor wraps a db.Executor.
type Executor struct {
	inner  db.Executor
	driver string
	cb     *gobreaker.CircuitBreaker
	tracer trace.Tracer
	logger *zap.Logger
}

// New wraps inner. driver labels metrics, spans and logs.
func New(inner db.Executor, driver string, st Settings, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if st.FailureThreshold == 0 {
		st.FailureThreshold = DefaultSettings().FailureThreshold
	}
	threshold := st.FailureThreshold

	e := &Executor{
		inner:  inner,
		driver: driver,
		tracer: otel.Tracer(tracerName),
		logger: logger,
	}
	e.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "search-" + driver,
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(driver).Set(float64(to))
			logger.Warn("Search circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: isSuccessful,
	})
	metrics.BreakerState.WithLabelValues(driver).Set(float64(gobreaker.StateClosed))
	return e
}

// isSuccessful keeps caller-side faults from tripping the breaker.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, db.ErrBadQuery) || errors.Is(err, context.Canceled)
}

// Execute runs the inner executor through the breaker inside a trace span.
func (e *Executor) Execute(ctx context.Context, index string, doc *query.Document) (*response.Raw, error) {
	ctx, span := e.tracer.Start(ctx, "search.execute", trace.WithAttributes(
		attribute.String("db.system", e.driver),
		attribute.String("search.index", index),
		attribute.Int("search.should_clauses", len(doc.Should())),
		attribute.Bool("search.lang_filter", len(doc.Must()) > 0),
	))
	defer span.End()

	start := time.Now()
	out, err := e.cb.Execute(func() (interface{}, error) {
		return e.inner.Execute(ctx, index, doc)
	})
	metrics.ExecutorDuration.WithLabelValues(e.driver).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
		}
		metrics.ExecutorErrorsTotal.WithLabelValues(e.driver, reason(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, reason(err))
		return nil, err
	}

	raw, _ := out.(*response.Raw)
	span.SetAttributes(attribute.Int("search.hits", len(raw.Entries())))
	e.logger.Debug("Search executed",
		zap.String("driver", e.driver),
		zap.String("index", index),
		zap.Int("hits", len(raw.Entries())),
		zap.Duration("duration", time.Since(start)),
	)
	return raw, nil
}

// Ping delegates to the inner executor, bypassing the breaker.
func (e *Executor) Ping(ctx context.Context) error {
	if err := e.inner.Ping(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", e.driver, err)
	}
	return nil
}

// Close closes the inner executor.
func (e *Executor) Close() {
	e.inner.Close()
}

// State reports the breaker state.
func (e *Executor) State() gobreaker.State {
	return e.cb.State()
}

func reason(err error) string {
	switch {
	case errors.Is(err, db.ErrUnavailable):
		return "breaker_open"
	case errors.Is(err, db.ErrIndexNotFound):
		return "index_not_found"
	case errors.Is(err, db.ErrBadQuery):
		return "bad_query"
	default:
		return "other"
	}
}

// Open reports whether the breaker is currently rejecting calls.
func (e *Executor) Open() bool {
	return e.cb.State() == gobreaker.StateOpen
}
