package elastic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/gitdocs/docsearch/internal/db"
	"github.com/gitdocs/docsearch/internal/domain/search/query"
	"github.com/gitdocs/docsearch/internal/domain/search/response"
)

// Compile-time check: Store implements db.Executor.
var _ db.Executor = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	URLs     []string
	Username string
	Password string
	Sniff    bool
	// HTTPClient overrides the transport (tests, custom TLS).
	HTTPClient *http.Client
}

// Store executes query documents against Elasticsearch.
type Store struct {
	client *elastic.Client
	urls   []string
}

// NewStore creates an Elasticsearch client. Health checks at startup are
// disabled; use WaitForReady to block until the cluster answers.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("urls is required")
	}

	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(cfg.URLs...),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheck(false),
	}
	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, elastic.SetHttpClient(cfg.HTTPClient))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, urls: cfg.URLs}, nil
}

// Ping checks that the first configured node answers.
func (s *Store) Ping(ctx context.Context) error {
	_, code, err := s.client.Ping(s.urls[0]).Do(ctx)
	if err == nil && code >= http.StatusMultipleChoices {
		err = fmt.Errorf("unexpected status %d", code)
	}
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close stops background client goroutines.
func (s *Store) Close() {
	s.client.Stop()
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Execute posts the query document as the search body.
func (s *Store) Execute(ctx context.Context, index string, doc *query.Document) (*response.Raw, error) {
	if index == "" {
		return nil, fmt.Errorf("index name is required")
	}

	res, err := s.client.Search().Index(index).Source(doc).Do(ctx)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: classify(err, index)}
	}

	return toRaw(res), nil
}

func classify(err error, index string) error {
	var e *elastic.Error
	if errors.As(err, &e) {
		switch e.Status {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", db.ErrIndexNotFound, index)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %w", db.ErrBadQuery, err)
		}
	}
	return err
}

// toRaw copies the hits the normalizer reads; everything else is dropped.
func toRaw(res *elastic.SearchResult) *response.Raw {
	raw := &response.Raw{Took: res.TookInMillis}
	if res.Hits == nil {
		return raw
	}

	hits := make([]response.Hit, 0, len(res.Hits.Hits))
	for _, h := range res.Hits.Hits {
		if h == nil {
			continue
		}
		hits = append(hits, response.Hit{
			ID:        h.Id,
			Score:     h.Score,
			Source:    h.Source,
			Highlight: h.Highlight,
		})
	}
	raw.Hits.Hits = hits
	return raw
}
