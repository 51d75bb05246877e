package query

import (
	"strings"

	"github.com/gitdocs/docsearch/internal/domain/search/category"
)

// Query construction constants.
const (
	// PageSize is the fixed result cap.
	PageSize = 10
	// TitleBoost weights prefix matches on the title field.
	TitleBoost = 12.0
	// MinimumShouldMatch is the number of should clauses a hit must satisfy.
	MinimumShouldMatch = 1
	// FragmentSize is the highlight fragment length in characters.
	FragmentSize = 200
	// HighlightPreTag opens a highlighted span.
	HighlightPreTag = "[highlight]"
	// HighlightPostTag closes a highlighted span.
	HighlightPostTag = "[xhighlight]"
	// LangField holds the document locale.
	LangField = "lang"
)

// Options are optional query filters.
type Options struct {
	Lang string
}

// Build turns keywords into a query document for the given category.
// Each token contributes a boosted prefix clause on the title field followed
// by a term clause on the content field. A non-empty Lang adds a required
// term clause next to the should clauses.
func Build(keywords string, opts Options, c category.Category) *Document {
	tokens := Tokenize(keywords)
	titleField := c.TitleField()
	contentField := c.ContentField()

	should := make([]Clause, 0, 2*len(tokens))
	for _, tok := range tokens {
		should = append(should,
			Clause{Kind: Prefix, Field: titleField, Value: tok, Boost: TitleBoost},
			Clause{Kind: Term, Field: contentField, Value: tok},
		)
	}

	doc := &Document{
		Size: PageSize,
		Query: Query{Bool: Bool{
			Should:             should,
			MinimumShouldMatch: MinimumShouldMatch,
		}},
		Highlight: Highlight{
			PreTags:  []string{HighlightPreTag},
			PostTags: []string{HighlightPostTag},
			Fields: map[string]HighlightField{
				contentField: {FragmentSize: FragmentSize},
			},
		},
	}

	if opts.Lang != "" {
		doc.Query.Bool.Must = []Clause{{Kind: Term, Field: LangField, Value: opts.Lang}}
	}

	return doc
}

// Tokenize splits keywords on whitespace and hyphens.
// Empty tokens from adjacent delimiters are dropped.
func Tokenize(keywords string) []string {
	return strings.FieldsFunc(keywords, isDelimiter)
}

func isDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', '-':
		return true
	}
	return false
}
