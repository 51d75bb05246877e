package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitdocs/docsearch/internal/domain/search/category"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"install guide", []string{"install", "guide"}},
		{"cherry-pick", []string{"cherry", "pick"}},
		{"foo--bar", []string{"foo", "bar"}},
		{"  a\tb\nc  ", []string{"a", "b", "c"}},
		{"", []string{}},
		{"- -", []string{}},
	}
	for _, tc := range tests {
		got := Tokenize(tc.in)
		if len(tc.want) == 0 {
			assert.Empty(t, got, "Tokenize(%q)", tc.in)
			continue
		}
		assert.Equal(t, tc.want, got, "Tokenize(%q)", tc.in)
	}
}

func TestBuild_ShouldPairs(t *testing.T) {
	doc := Build("rebase interactive-mode", Options{}, category.Reference)

	should := doc.Should()
	require.Len(t, should, 6)
	tokens := []string{"rebase", "interactive", "mode"}
	for i, tok := range tokens {
		prefix, term := should[2*i], should[2*i+1]
		assert.Equal(t, Clause{Kind: Prefix, Field: "name", Value: tok, Boost: 12.0}, prefix)
		assert.Equal(t, Clause{Kind: Term, Field: "text", Value: tok}, term)
	}
	assert.Equal(t, 1, doc.Query.Bool.MinimumShouldMatch)
	assert.Equal(t, 10, doc.Size)
	assert.Empty(t, doc.Must())
}

func TestBuild_BookFields(t *testing.T) {
	doc := Build("branch", Options{}, category.Book)

	require.Len(t, doc.Should(), 2)
	assert.Equal(t, "section", doc.Should()[0].Field)
	assert.Equal(t, "html", doc.Should()[1].Field)
	assert.Equal(t, []string{"html"}, doc.HighlightFields())
	assert.Equal(t, 200, doc.Highlight.Fields["html"].FragmentSize)
}

func TestBuild_LangMergesWithShould(t *testing.T) {
	doc := Build("merge", Options{Lang: "en"}, category.Book)

	assert.Len(t, doc.Should(), 2)
	require.Len(t, doc.Must(), 1)
	assert.Equal(t, Clause{Kind: Term, Field: "lang", Value: "en"}, doc.Must()[0])
	assert.Equal(t, 1, doc.Query.Bool.MinimumShouldMatch)
}

func TestBuild_EmptyLangAddsNoMust(t *testing.T) {
	doc := Build("merge", Options{Lang: ""}, category.Book)
	assert.Nil(t, doc.Must())

	body, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"must"`)
}

func TestBuild_EmptyKeywords(t *testing.T) {
	doc := Build("", Options{}, category.Reference)
	assert.Empty(t, doc.Should())

	body, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"should":[]`)
}

func TestBuild_IndependentDocuments(t *testing.T) {
	a := Build("one", Options{}, category.Book)
	b := Build("one", Options{}, category.Book)
	a.Query.Bool.Should[0].Value = "changed"
	assert.Equal(t, "one", b.Should()[0].Value)
}

func TestDocument_JSON(t *testing.T) {
	doc := Build("install guide", Options{Lang: "en"}, category.Reference)

	body, err := json.Marshal(doc)
	require.NoError(t, err)

	want := `{
		"size": 10,
		"query": {"bool": {
			"should": [
				{"prefix": {"name": {"value": "install", "boost": 12}}},
				{"term": {"text": "install"}},
				{"prefix": {"name": {"value": "guide", "boost": 12}}},
				{"term": {"text": "guide"}}
			],
			"minimum_should_match": 1,
			"must": [{"term": {"lang": "en"}}]
		}},
		"highlight": {
			"pre_tags": ["[highlight]"],
			"post_tags": ["[xhighlight]"],
			"fields": {"text": {"fragment_size": 200}}
		}
	}`
	assert.JSONEq(t, want, string(body))
}

func TestDocument_Tags(t *testing.T) {
	doc := Build("x", Options{}, category.Book)
	assert.Equal(t, "[highlight]", doc.PreTag())
	assert.Equal(t, "[xhighlight]", doc.PostTag())

	empty := &Document{}
	assert.Empty(t, empty.PreTag())
	assert.Empty(t, empty.PostTag())
}
