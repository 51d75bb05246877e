package query

import (
	"encoding/json"
	"sort"
)

// ClauseKind selects the match semantics of a Clause.
type ClauseKind int

const (
	// Prefix matches field values starting with Value.
	Prefix ClauseKind = iota
	// Term matches field values exactly equal to Value.
	Term
)

// Clause is a single leaf condition inside a bool query.
type Clause struct {
	Kind  ClauseKind
	Field string
	Value string
	Boost float64 // prefix only; 0 means engine default
}

// MarshalJSON encodes the clause in Elasticsearch query DSL.
func (c Clause) MarshalJSON() ([]byte, error) {
	if c.Kind == Prefix {
		inner := map[string]any{"value": c.Value}
		if c.Boost != 0 {
			inner["boost"] = c.Boost
		}
		return json.Marshal(map[string]any{
			"prefix": map[string]any{c.Field: inner},
		})
	}
	return json.Marshal(map[string]any{
		"term": map[string]string{c.Field: c.Value},
	})
}

// Bool is the boolean clause set of a query.
type Bool struct {
	Should             []Clause `json:"should"`
	MinimumShouldMatch int      `json:"minimum_should_match"`
	Must               []Clause `json:"must,omitempty"`
}

// Query wraps the bool clause set.
type Query struct {
	Bool Bool `json:"bool"`
}

// HighlightField holds per-field highlight settings.
type HighlightField struct {
	FragmentSize int `json:"fragment_size"`
}

// Highlight configures highlight fragments returned with each hit.
type Highlight struct {
	PreTags  []string                  `json:"pre_tags"`
	PostTags []string                  `json:"post_tags"`
	Fields   map[string]HighlightField `json:"fields"`
}

// Document is a complete search request body.
// It serializes to the Elasticsearch search DSL; other executors translate it.
type Document struct {
	Size      int       `json:"size"`
	Query     Query     `json:"query"`
	Highlight Highlight `json:"highlight"`
}

// Should returns the should clauses in build order.
func (d *Document) Should() []Clause { return d.Query.Bool.Should }

// Must returns the required clauses (empty when no language filter is set).
func (d *Document) Must() []Clause { return d.Query.Bool.Must }

// HighlightFields returns the highlighted field names, sorted.
func (d *Document) HighlightFields() []string {
	fields := make([]string, 0, len(d.Highlight.Fields))
	for name := range d.Highlight.Fields {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return fields
}

// PreTag returns the first highlight opening marker, or "".
func (d *Document) PreTag() string {
	if len(d.Highlight.PreTags) == 0 {
		return ""
	}
	return d.Highlight.PreTags[0]
}

// PostTag returns the first highlight closing marker, or "".
func (d *Document) PostTag() string {
	if len(d.Highlight.PostTags) == 0 {
		return ""
	}
	return d.Highlight.PostTags[0]
}
