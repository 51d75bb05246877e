package docsearch

import "github.com/gitdocs/docsearch/internal/domain/search/category"

// Category selects the index partition a search runs against.
type Category string

// Categories.
const (
	Book      Category = Category(category.Book)
	Reference Category = Category(category.Reference)
)

// ParseCategory accepts book, section, reference, man_doc and docs (case-insensitive).
func ParseCategory(label string) (Category, bool) {
	c, ok := category.Parse(label)
	return Category(c), ok
}

func (c Category) internal() category.Category {
	if c == Book {
		return category.Book
	}
	return category.Reference
}

// Document is an entry for the in-process backend.
type Document struct {
	ID     string         `json:"id"`
	Source map[string]any `json:"source"`
}

// Match is a single normalized hit.
type Match struct {
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	Highlight    string  `json:"highlight,omitempty"`
	HasHighlight bool    `json:"-"`
	URL          string  `json:"url"`
}

// Envelope groups the matches of one category.
type Envelope struct {
	Category string  `json:"category"`
	Term     string  `json:"term"`
	Matches  []Match `json:"matches"`
}
