package docsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gitdocs/docsearch/internal/db"
	dbElastic "github.com/gitdocs/docsearch/internal/db/elastic"
	"github.com/gitdocs/docsearch/internal/db/guard"
	dbMemory "github.com/gitdocs/docsearch/internal/db/memory"
	dbRedis "github.com/gitdocs/docsearch/internal/db/redis"
	"github.com/gitdocs/docsearch/internal/domain/search/query"
	"github.com/gitdocs/docsearch/internal/domain/search/result"
	searchuc "github.com/gitdocs/docsearch/internal/usecase/search"
)

const (
	defaultIndex            = "docsearch"
	defaultTimeout          = 5 * time.Second
	defaultReadinessTimeout = 10 * time.Second
)

// Client is the docsearch SDK entry point. It is safe for concurrent use.
type Client struct {
	exec db.Executor
	svc  *searchuc.Service
	obs  *observer
}

// SearchOptions narrows a search.
type SearchOptions struct {
	// Lang restricts hits to one locale (e.g. "en", "pt-BR"). Empty searches all.
	Lang string
}

// New creates a Client and waits until the backend answers.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		index:            defaultIndex,
		timeout:          defaultTimeout,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.driver == "" {
		return nil, ErrNoBackend
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	obs, err := newObserver(logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	exec, err := createExecutor(cfg)
	if err != nil {
		return nil, err
	}
	if rw, ok := exec.(interface {
		WaitForReady(ctx context.Context, timeout time.Duration) error
	}); ok {
		if err := rw.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			exec.Close()
			return nil, fmt.Errorf("docsearch: backend not ready: %w", err)
		}
	}

	if cfg.breaker != nil {
		exec = guard.New(exec, cfg.driver, guard.Settings{
			MaxRequests:      cfg.breaker.MaxRequests,
			Interval:         cfg.breaker.Interval,
			Timeout:          cfg.breaker.Timeout,
			FailureThreshold: cfg.breaker.FailureThreshold,
		}, logger)
	}

	return &Client{
		exec: exec,
		svc:  searchuc.New(exec, cfg.index, logger, searchuc.WithTimeout(cfg.timeout)),
		obs:  obs,
	}, nil
}

func createExecutor(cfg *clientConfig) (db.Executor, error) {
	switch cfg.driver {
	case driverElastic:
		s, err := dbElastic.NewStore(dbElastic.Config{
			URLs:     cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("docsearch: create elastic store: %w", err)
		}
		return s, nil
	case driverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Username:  cfg.username,
			Password:  cfg.password,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("docsearch: create redis store: %w", err)
		}
		return s, nil
	case driverMemory:
		s, err := dbMemory.NewStore(cfg.index)
		if err != nil {
			return nil, fmt.Errorf("docsearch: create memory store: %w", err)
		}
		docs := make([]dbMemory.Document, len(cfg.docs))
		for i, d := range cfg.docs {
			docs[i] = dbMemory.Document{ID: d.ID, Source: d.Source}
		}
		if err := s.Add(docs...); err != nil {
			s.Close()
			return nil, fmt.Errorf("docsearch: load documents: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("docsearch: unknown driver %q", cfg.driver)
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.exec != nil {
		c.exec.Close()
	}
}

// Ping checks backend connectivity.
func (c *Client) Ping(ctx context.Context) error {
	start := time.Now()
	err := c.exec.Ping(ctx)
	c.obs.observe("ping", start, err)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs keywords against one category. Backend failures and empty
// results are both reported as absence.
func (c *Client) Search(ctx context.Context, keywords string, cat Category, opts *SearchOptions) (Envelope, bool) {
	start := time.Now()
	env, ok := c.svc.Search(ctx, keywords, cat.internal().TypeID(), toQueryOptions(opts))
	c.obs.observeSearch("search", start, ok)
	if !ok {
		return Envelope{}, false
	}
	return fromEnvelope(&env), true
}

// SearchAll runs keywords against Book then Reference and returns the
// present envelopes in that order.
func (c *Client) SearchAll(ctx context.Context, keywords string, opts *SearchOptions) []Envelope {
	start := time.Now()
	envs := c.svc.SearchAll(ctx, keywords, toQueryOptions(opts))
	c.obs.observeSearch("search_all", start, len(envs) > 0)

	out := make([]Envelope, len(envs))
	for i := range envs {
		out[i] = fromEnvelope(&envs[i])
	}
	return out
}

// Explain renders the search request body sent for keywords without executing it.
func Explain(keywords string, cat Category, opts *SearchOptions) ([]byte, error) {
	doc := query.Build(keywords, toQueryOptions(opts), cat.internal())
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("explain: %w", err)
	}
	return b, nil
}

func toQueryOptions(opts *SearchOptions) query.Options {
	if opts == nil {
		return query.Options{}
	}
	return query.Options{Lang: opts.Lang}
}

func fromEnvelope(e *result.Envelope) Envelope {
	matches := make([]Match, len(e.Matches()))
	for i, m := range e.Matches() {
		hl, ok := m.Highlight()
		matches[i] = Match{
			Name:         m.Name(),
			Score:        m.Score(),
			Highlight:    hl,
			HasHighlight: ok,
			URL:          m.URL(),
		}
	}
	return Envelope{Category: e.Category(), Term: e.Term(), Matches: matches}
}

// LoadDocuments reads a JSON fixture file ([{"id": ..., "source": {...}}]) for WithMemory.
func LoadDocuments(path string) ([]Document, error) {
	raw, err := dbMemory.LoadFixtures(path)
	if err != nil {
		return nil, fmt.Errorf("docsearch: %w", err)
	}
	docs := make([]Document, len(raw))
	for i, d := range raw {
		docs[i] = Document{ID: d.ID, Source: d.Source}
	}
	return docs, nil
}
