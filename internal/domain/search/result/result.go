package result

// Match is a single normalized search hit.
type Match struct {
	name         string
	score        float64
	highlight    string
	hasHighlight bool
	url          string
}

// NewMatch creates a match. An empty highlight with ok=false means no snippet.
func NewMatch(name string, score float64, highlight string, ok bool, url string) Match {
	return Match{name: name, score: score, highlight: highlight, hasHighlight: ok, url: url}
}

// Name returns the display name.
func (m *Match) Name() string { return m.name }

// Score returns the engine relevance score.
func (m *Match) Score() float64 { return m.score }

// Highlight returns the highlight snippet and whether one exists.
func (m *Match) Highlight() (string, bool) { return m.highlight, m.hasHighlight }

// URL returns the canonical page URL.
func (m *Match) URL() string { return m.url }

// Envelope groups the matches of one category for a search term.
type Envelope struct {
	category string
	term     string
	matches  []Match
}

// NewEnvelope creates an envelope.
func NewEnvelope(category, term string, matches []Match) Envelope {
	return Envelope{category: category, term: term, matches: matches}
}

// Category returns the category label (Book, Reference).
func (e *Envelope) Category() string { return e.category }

// Term returns the original keyword string.
func (e *Envelope) Term() string { return e.term }

// Matches returns the matches in engine order.
func (e *Envelope) Matches() []Match { return e.matches }
