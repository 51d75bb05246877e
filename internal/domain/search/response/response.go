package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Raw is the engine's answer to a query document, in Elasticsearch response shape.
type Raw struct {
	Took int64   `json:"took,omitempty"`
	Hits HitList `json:"hits"`
}

// HitList is the top-level hits object.
type HitList struct {
	Hits []Hit `json:"hits"`
}

// Hit is a single matching document.
// Source is kept undecoded so a malformed document only affects its own fields.
type Hit struct {
	ID        string              `json:"_id"`
	Score     *float64            `json:"_score"`
	Source    json.RawMessage     `json:"_source,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// Entries returns the hits, nil-safe on a nil response.
func (r *Raw) Entries() []Hit {
	if r == nil {
		return nil
	}
	return r.Hits.Hits
}

// nameFields lists source fields holding a display name, highest priority first.
var nameFields = []string{"section", "chapter", "name"}

// Fields decodes the source object. Reports false when absent or not an object.
func (h *Hit) Fields() (map[string]any, bool) {
	if len(h.Source) == 0 {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(h.Source, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// DisplayName returns the first present of section, chapter, name.
// JSON null counts as absent. Returns "" when none is present.
func (h *Hit) DisplayName() string {
	m, ok := h.Fields()
	if !ok {
		return ""
	}
	for _, f := range nameFields {
		v, ok := m[f]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}

// Slug converts the document id into a URL path ("a---b" -> "a/b").
func (h *Hit) Slug() string {
	return strings.ReplaceAll(h.ID, "---", "/")
}

// Fragment returns the first highlight fragment for field.
func (h *Hit) Fragment(field string) (string, bool) {
	frags, ok := h.Highlight[field]
	if !ok || len(frags) == 0 {
		return "", false
	}
	return frags[0], true
}

// ScoreValue returns the relevance score, 0 when the engine did not report one.
func (h *Hit) ScoreValue() float64 {
	if h.Score == nil {
		return 0
	}
	return *h.Score
}
