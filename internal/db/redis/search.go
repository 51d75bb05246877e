package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/gitdocs/docsearch/internal/db"
	"github.com/gitdocs/docsearch/internal/domain/search/query"
	"github.com/gitdocs/docsearch/internal/domain/search/response"
)

// charsPerWord converts highlight fragment sizes (characters) into SUMMARIZE LEN (words).
const charsPerWord = 6

// Execute translates the query document into FT.SEARCH and maps the reply into a raw response.
func (s *Store) Execute(ctx context.Context, index string, doc *query.Document) (*response.Raw, error) {
	if index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	// minimum_should_match >= 1 cannot be satisfied without should clauses.
	if len(doc.Should()) == 0 {
		return &response.Raw{}, nil
	}

	args := buildSearchArgs(index, doc)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		switch {
		case isRedisErr(err, "no such index"), isRedisErr(err, "unknown index name"):
			return nil, &db.Error{Op: db.OpFTQuery, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, index)}
		case isRedisErr(err, "syntax error"):
			return nil, &db.Error{Op: db.OpFTQuery, Err: fmt.Errorf("%w: %w", db.ErrBadQuery, err)}
		}
		return nil, &db.Error{Op: db.OpFTQuery, Err: err}
	}

	return s.parseReply(raw, doc)
}

// buildSearchArgs renders FT.SEARCH arguments (without the command name).
func buildSearchArgs(index string, doc *query.Document) []string {
	args := []string{index, buildQueryString(doc), "WITHSCORES"}

	if fields := doc.HighlightFields(); len(fields) > 0 {
		n := strconv.Itoa(len(fields))
		var frag int
		for _, f := range fields {
			frag = max(frag, doc.Highlight.Fields[f].FragmentSize)
		}

		args = append(args, "SUMMARIZE", "FIELDS", n)
		args = append(args, fields...)
		args = append(args, "FRAGS", "1", "LEN", strconv.Itoa(max(1, frag/charsPerWord)))

		args = append(args, "HIGHLIGHT", "FIELDS", n)
		args = append(args, fields...)
		args = append(args, "TAGS", doc.PreTag(), doc.PostTag())
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(doc.Size),
		"DIALECT", "2",
	)
	return args
}

// buildQueryString renders the bool clause set in RediSearch query syntax.
// Must clauses are intersected with a union of the should clauses.
func buildQueryString(doc *query.Document) string {
	should := make([]string, 0, len(doc.Should()))
	for _, c := range doc.Should() {
		should = append(should, buildClause(c))
	}

	parts := make([]string, 0, len(doc.Must())+1)
	for _, c := range doc.Must() {
		parts = append(parts, buildTagFilter(c.Field, c.Value))
	}
	parts = append(parts, "("+strings.Join(should, " | ")+")")
	return strings.Join(parts, " ")
}

func buildClause(c query.Clause) string {
	escaped := escapeQuery(c.Value)
	if c.Kind == query.Prefix {
		expr := fmt.Sprintf("(@%s:%s*)", c.Field, escaped)
		if c.Boost != 0 {
			expr += fmt.Sprintf(" => { $weight: %g; }", c.Boost)
		}
		return expr
	}
	return fmt.Sprintf("@%s:%s", c.Field, escaped)
}

func buildTagFilter(key, value string) string {
	return fmt.Sprintf("@%s:{%s}", key, tagEscaper.Replace(value))
}

// parseReply maps a WITHSCORES reply: [total, key1, score1, fields1, ...].
func (s *Store) parseReply(raw []rueidis.RedisMessage, doc *query.Document) (*response.Raw, error) {
	if len(raw) == 0 {
		return &response.Raw{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &response.Raw{}, nil
	}

	highlightFields := doc.HighlightFields()
	preTag := doc.PreTag()

	hits := make([]response.Hit, 0, min(int(total), doc.Size))
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fieldMsgs, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldMsgs)

		source, err := json.Marshal(fields)
		if err != nil {
			continue
		}

		hit := response.Hit{
			ID:     strings.TrimPrefix(key, s.keyPrefix),
			Score:  &score,
			Source: source,
		}
		for _, f := range highlightFields {
			if v, ok := fields[f]; ok && preTag != "" && strings.Contains(v, preTag) {
				if hit.Highlight == nil {
					hit.Highlight = make(map[string][]string, len(highlightFields))
				}
				hit.Highlight[f] = []string{v}
			}
		}
		hits = append(hits, hit)
	}

	return &response.Raw{Hits: response.HitList{Hits: hits}}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`.`, `\.`,
	`,`, `\,`,
)
