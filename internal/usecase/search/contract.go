package search

import (
	"context"

	"github.com/gitdocs/docsearch/internal/domain/search/query"
	"github.com/gitdocs/docsearch/internal/domain/search/response"
)

// Executor runs a query document against the search index.
type Executor interface {
	Execute(ctx context.Context, index string, doc *query.Document) (*response.Raw, error)
}
