package docsearch

import "context"

// QueryBuilder is a fluent builder for searches.
type QueryBuilder struct {
	client     *Client
	keywords   string
	lang       string
	categories []Category
}

// Query starts a fluent search for keywords. Without In, both categories are searched.
func (c *Client) Query(keywords string) *QueryBuilder {
	return &QueryBuilder{client: c, keywords: keywords}
}

// In restricts the search to the given categories, in call order.
func (b *QueryBuilder) In(cats ...Category) *QueryBuilder {
	b.categories = append(b.categories, cats...)
	return b
}

// Lang restricts hits to one locale.
func (b *QueryBuilder) Lang(lang string) *QueryBuilder {
	b.lang = lang
	return b
}

// Do executes the search and returns the present envelopes.
func (b *QueryBuilder) Do(ctx context.Context) []Envelope {
	opts := &SearchOptions{Lang: b.lang}
	if len(b.categories) == 0 {
		return b.client.SearchAll(ctx, b.keywords, opts)
	}

	out := make([]Envelope, 0, len(b.categories))
	for _, cat := range b.categories {
		if env, ok := b.client.Search(ctx, b.keywords, cat, opts); ok {
			out = append(out, env)
		}
	}
	return out
}

// Explain renders the request body for the first selected category (Book by default).
func (b *QueryBuilder) Explain() ([]byte, error) {
	cat := Book
	if len(b.categories) > 0 {
		cat = b.categories[0]
	}
	return Explain(b.keywords, cat, &SearchOptions{Lang: b.lang})
}
