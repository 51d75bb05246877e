package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hit(t *testing.T, raw string) Hit {
	t.Helper()
	var h Hit
	require.NoError(t, json.Unmarshal([]byte(raw), &h))
	return h
}

func TestDisplayName_Priority(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"section wins", `{"section":"S","chapter":"C","name":"N"}`, "S"},
		{"chapter over name", `{"chapter":"C","name":"N"}`, "C"},
		{"name only", `{"name":"N"}`, "N"},
		{"null skipped", `{"section":null,"name":"N"}`, "N"},
		{"empty string is present", `{"section":"","name":"N"}`, ""},
		{"non-string value", `{"chapter":3}`, "3"},
		{"none", `{"title":"T"}`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := Hit{Source: json.RawMessage(tc.src)}
			assert.Equal(t, tc.want, h.DisplayName())
		})
	}
}

func TestDisplayName_MalformedSource(t *testing.T) {
	for _, src := range []string{``, `"text"`, `[1,2]`, `null`} {
		h := Hit{Source: json.RawMessage(src)}
		assert.Empty(t, h.DisplayName(), "source %q", src)
	}
}

func TestSlug(t *testing.T) {
	h := Hit{ID: "a---b---c"}
	assert.Equal(t, "a/b/c", h.Slug())

	h = Hit{ID: "plain"}
	assert.Equal(t, "plain", h.Slug())
}

func TestFragment(t *testing.T) {
	h := hit(t, `{"_id":"x","highlight":{"text":["first","second"]}}`)

	frag, ok := h.Fragment("text")
	assert.True(t, ok)
	assert.Equal(t, "first", frag)

	_, ok = h.Fragment("html")
	assert.False(t, ok)

	empty := Hit{Highlight: map[string][]string{"text": {}}}
	_, ok = empty.Fragment("text")
	assert.False(t, ok)

	var none Hit
	_, ok = none.Fragment("text")
	assert.False(t, ok)
}

func TestScoreValue(t *testing.T) {
	h := hit(t, `{"_id":"x","_score":3.2}`)
	assert.InDelta(t, 3.2, h.ScoreValue(), 1e-9)

	h = hit(t, `{"_id":"x","_score":null}`)
	assert.Zero(t, h.ScoreValue())
}

func TestEntries(t *testing.T) {
	var r *Raw
	assert.Nil(t, r.Entries())

	var decoded Raw
	require.NoError(t, json.Unmarshal([]byte(`{"took":3}`), &decoded))
	assert.Empty(t, decoded.Entries())

	require.NoError(t, json.Unmarshal([]byte(`{"hits":{"hits":[{"_id":"a"},{"_id":"b"}]}}`), &decoded))
	assert.Len(t, decoded.Entries(), 2)
}
