// Package memory provides an in-process search executor backed by bleve.
// It serves local development and end-to-end tests without an external engine.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/highlight/highlighter/html"
	bquery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/gitdocs/docsearch/internal/db"
	"github.com/gitdocs/docsearch/internal/domain/search/query"
	"github.com/gitdocs/docsearch/internal/domain/search/response"
)

// Compile-time check: Store implements db.Executor.
var _ db.Executor = (*Store)(nil)

// bleve's html highlighter wraps matches in <mark> tags.
const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Document is a fixture entry: the index id plus its source fields.
type Document struct {
	ID     string         `json:"id"`
	Source map[string]any `json:"source"`
}

// Store is a single named in-memory index.
type Store struct {
	name  string
	index bleve.Index
}

// NewStore creates an empty in-memory index answering to name.
func NewStore(name string) (*Store, error) {
	if name == "" {
		return nil, fmt.Errorf("index name is required")
	}
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Store{name: name, index: idx}, nil
}

// newMapping indexes every field dynamically with the standard analyzer,
// except the locale which must match exactly.
func newMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	im.DefaultMapping.AddFieldMappingsAt(query.LangField, bleve.NewKeywordFieldMapping())
	return im
}

// LoadFixtures reads a JSON array of Documents from path.
func LoadFixtures(path string) ([]Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &db.Error{Op: db.OpLoad, Err: err}
	}
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, &db.Error{Op: db.OpLoad, Err: fmt.Errorf("parse %s: %w", path, err)}
	}
	return docs, nil
}

// Add indexes documents in a single batch. Existing ids are replaced.
func (s *Store) Add(docs ...Document) error {
	b := s.index.NewBatch()
	for _, d := range docs {
		if d.ID == "" {
			return &db.Error{Op: db.OpLoad, Err: fmt.Errorf("document id is required")}
		}
		if err := b.Index(d.ID, d.Source); err != nil {
			return &db.Error{Op: db.OpLoad, Err: fmt.Errorf("index %s: %w", d.ID, err)}
		}
	}
	if err := s.index.Batch(b); err != nil {
		return &db.Error{Op: db.OpLoad, Err: err}
	}
	return nil
}

// Ping reports whether the index is open.
func (s *Store) Ping(_ context.Context) error {
	if _, err := s.index.DocCount(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the index.
func (s *Store) Close() {
	_ = s.index.Close()
}

// Execute translates the query document into a bleve boolean query.
func (s *Store) Execute(ctx context.Context, index string, doc *query.Document) (*response.Raw, error) {
	if index != s.name {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, index)}
	}
	// minimum_should_match >= 1 cannot be satisfied without should clauses.
	if len(doc.Should()) == 0 {
		return &response.Raw{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(doc), doc.Size, 0, false)
	req.Fields = []string{"*"}
	if fields := doc.HighlightFields(); len(fields) > 0 {
		req.Highlight = bleve.NewHighlightWithStyle(html.Name)
		for _, f := range fields {
			req.Highlight.AddField(f)
		}
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	tags := strings.NewReplacer(markOpen, doc.PreTag(), markClose, doc.PostTag())
	hits := make([]response.Hit, 0, len(res.Hits))
	for _, m := range res.Hits {
		source, err := json.Marshal(m.Fields)
		if err != nil {
			continue
		}
		score := m.Score
		hit := response.Hit{ID: m.ID, Score: &score, Source: source}
		for field, frags := range m.Fragments {
			if len(frags) == 0 {
				continue
			}
			if hit.Highlight == nil {
				hit.Highlight = make(map[string][]string, len(m.Fragments))
			}
			out := make([]string, len(frags))
			for i, f := range frags {
				out[i] = tags.Replace(f)
			}
			hit.Highlight[field] = out
		}
		hits = append(hits, hit)
	}

	return &response.Raw{
		Took: res.Took.Milliseconds(),
		Hits: response.HitList{Hits: hits},
	}, nil
}

func buildQuery(doc *query.Document) bquery.Query {
	bq := bleve.NewBooleanQuery()
	for _, c := range doc.Should() {
		bq.AddShould(buildClause(c))
	}
	bq.SetMinShould(float64(doc.Query.Bool.MinimumShouldMatch))
	for _, c := range doc.Must() {
		bq.AddMust(buildClause(c))
	}
	return bq
}

func buildClause(c query.Clause) bquery.Query {
	if c.Kind == query.Prefix {
		q := bleve.NewPrefixQuery(c.Value)
		q.SetField(c.Field)
		if c.Boost != 0 {
			q.SetBoost(c.Boost)
		}
		return q
	}
	q := bleve.NewTermQuery(c.Value)
	q.SetField(c.Field)
	return q
}
