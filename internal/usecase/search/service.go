package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gitdocs/docsearch/internal/domain/search/category"
	"github.com/gitdocs/docsearch/internal/domain/search/query"
	"github.com/gitdocs/docsearch/internal/domain/search/result"
	"github.com/gitdocs/docsearch/internal/logger"
	"github.com/gitdocs/docsearch/internal/metrics"
)

// Outcome labels for the search request counter.
const (
	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeError = "error"
)

// Service builds keyword queries, executes them and normalizes the results.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	exec    Executor
	index   string
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each execution with a context deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a search service over a shared executor handle.
func New(exec Executor, index string, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{exec: exec, index: index, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search runs keywords against the category resolved from typeID.
// Execution failures are logged and reported as absence.
func (s *Service) Search(
	ctx context.Context, keywords, typeID string, opts query.Options,
) (result.Envelope, bool) {
	c := category.Resolve(typeID)
	doc := query.Build(keywords, opts, c)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.exec.Execute(ctx, s.index, doc)
	if err != nil {
		s.log(ctx).Warn("Search execution failed",
			zap.Error(err),
			zap.String("category", c.Label()),
			zap.String("index", s.index),
			zap.String("keywords", keywords),
		)
		metrics.SearchRequestsTotal.WithLabelValues(c.Label(), outcomeError).Inc()
		return result.Envelope{}, false
	}

	env, ok := Normalize(raw, c, keywords)
	if !ok {
		metrics.SearchRequestsTotal.WithLabelValues(c.Label(), outcomeMiss).Inc()
		return result.Envelope{}, false
	}
	metrics.SearchRequestsTotal.WithLabelValues(c.Label(), outcomeHit).Inc()
	return env, true
}

// SearchAll searches Book then Reference and returns the present envelopes in that order.
func (s *Service) SearchAll(ctx context.Context, keywords string, opts query.Options) []result.Envelope {
	out := make([]result.Envelope, 0, len(category.All()))
	for _, c := range category.All() {
		if env, ok := s.Search(ctx, keywords, c.TypeID(), opts); ok {
			out = append(out, env)
		}
	}
	return out
}

// log prefers the request-scoped logger when one is attached.
func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}
