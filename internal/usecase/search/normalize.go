package search

import (
	"github.com/gitdocs/docsearch/internal/domain/search/category"
	"github.com/gitdocs/docsearch/internal/domain/search/response"
	"github.com/gitdocs/docsearch/internal/domain/search/result"
)

// Normalize maps a raw engine response into the envelope for category c.
// A nil response or one without hits is reported as absent.
func Normalize(raw *response.Raw, c category.Category, keywords string) (result.Envelope, bool) {
	hits := raw.Entries()
	if len(hits) == 0 {
		return result.Envelope{}, false
	}

	content := c.ContentField()
	matches := make([]result.Match, 0, len(hits))
	for i := range hits {
		h := &hits[i]
		name := h.DisplayName()
		highlight, ok := h.Fragment(content)
		matches = append(matches, result.NewMatch(name, h.ScoreValue(), highlight, ok, c.URL(h.Slug(), name)))
	}

	return result.NewEnvelope(c.Label(), keywords, matches), true
}
