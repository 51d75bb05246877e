package db

import (
	"context"

	"github.com/gitdocs/docsearch/internal/domain/search/query"
	"github.com/gitdocs/docsearch/internal/domain/search/response"
)

// Executor runs query documents against a search index.
// Implementations are long-lived, shared handles and must be safe for concurrent use.
type Executor interface {
	Pinger
	Execute(ctx context.Context, index string, doc *query.Document) (*response.Raw, error)
	Close()
}

// Pinger checks search backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
