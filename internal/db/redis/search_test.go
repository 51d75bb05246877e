package redis

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/gitdocs/docsearch/internal/db"
	"github.com/gitdocs/docsearch/internal/domain/search/category"
	"github.com/gitdocs/docsearch/internal/domain/search/query"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c, "")
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c, "")
	err := s.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Errorf("expected db.Error with op PING, got %v", err)
	}
}

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- query translation ---

func TestBuildQueryString_ShouldOnly(t *testing.T) {
	doc := query.Build("install guide", query.Options{}, category.Reference)

	got := buildQueryString(doc)
	want := "((@name:install*) => { $weight: 12; } | @text:install | " +
		"(@name:guide*) => { $weight: 12; } | @text:guide)"
	if got != want {
		t.Errorf("query string:\n got %s\nwant %s", got, want)
	}
}

func TestBuildQueryString_WithLang(t *testing.T) {
	doc := query.Build("merge", query.Options{Lang: "pt-BR"}, category.Book)

	got := buildQueryString(doc)
	want := `@lang:{pt\-BR} ((@section:merge*) => { $weight: 12; } | @html:merge)`
	if got != want {
		t.Errorf("query string:\n got %s\nwant %s", got, want)
	}
}

func TestBuildQueryString_EscapesTokens(t *testing.T) {
	doc := query.Build("git@v2.0", query.Options{}, category.Reference)

	got := buildQueryString(doc)
	want := `((@name:git\@v2\.0*) => { $weight: 12; } | @text:git\@v2\.0)`
	if got != want {
		t.Errorf("query string:\n got %s\nwant %s", got, want)
	}
}

func TestBuildSearchArgs(t *testing.T) {
	doc := query.Build("install", query.Options{}, category.Reference)

	got := buildSearchArgs("docs", doc)
	want := []string{
		"docs", "((@name:install*) => { $weight: 12; } | @text:install)", "WITHSCORES",
		"SUMMARIZE", "FIELDS", "1", "text", "FRAGS", "1", "LEN", "33",
		"HIGHLIGHT", "FIELDS", "1", "text", "TAGS", "[highlight]", "[xhighlight]",
		"LIMIT", "0", "10",
		"DIALECT", "2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args:\n got %q\nwant %q", got, want)
	}
}

// --- Execute ---

func TestExecute_HappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "docs" && cmd[3] == "WITHSCORES"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("doc:install---guide"),
			mock.RedisString("3.2"),
			mock.RedisArray(
				mock.RedisString("name"), mock.RedisString("install"),
				mock.RedisString("text"), mock.RedisString("... [highlight]guide[xhighlight] ..."),
			),
			mock.RedisString("doc:config"),
			mock.RedisString("1.5"),
			mock.RedisArray(
				mock.RedisString("name"), mock.RedisString("config"),
				mock.RedisString("text"), mock.RedisString("plain text"),
			),
		)))

	s := NewStoreForTest(c, "doc:")
	doc := query.Build("install guide", query.Options{}, category.Reference)

	raw, err := s.Execute(context.Background(), "docs", doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hits := raw.Entries()
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}

	first := hits[0]
	if first.ID != "install---guide" {
		t.Errorf("ID = %q, want prefix stripped", first.ID)
	}
	if first.ScoreValue() != 3.2 {
		t.Errorf("score = %f", first.ScoreValue())
	}
	if first.DisplayName() != "install" {
		t.Errorf("name = %q", first.DisplayName())
	}
	if frag, ok := first.Fragment("text"); !ok || frag != "... [highlight]guide[xhighlight] ..." {
		t.Errorf("fragment = %q, %v", frag, ok)
	}

	var src map[string]string
	if err := json.Unmarshal(hits[1].Source, &src); err != nil {
		t.Fatalf("source: %v", err)
	}
	if src["name"] != "config" {
		t.Errorf("source = %v", src)
	}
	if _, ok := hits[1].Fragment("text"); ok {
		t.Error("expected no fragment without highlight tags")
	}
}

func TestExecute_ZeroTotal(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c, "")
	raw, err := s.Execute(context.Background(), "docs", query.Build("nothing", query.Options{}, category.Book))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw.Entries()) != 0 {
		t.Errorf("expected no hits, got %d", len(raw.Entries()))
	}
}

func TestExecute_NoShouldClausesSkipsRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl) // no expectations: any Do call fails the test

	s := NewStoreForTest(c, "")
	raw, err := s.Execute(context.Background(), "docs", query.Build(" - ", query.Options{}, category.Book))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw.Entries()) != 0 {
		t.Error("expected empty response")
	}
}

func TestExecute_MissingIndexName(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewStoreForTest(mock.NewClient(ctrl), "")

	if _, err := s.Execute(context.Background(), "", query.Build("x", query.Options{}, category.Book)); err == nil {
		t.Fatal("expected error")
	}
}

func TestExecute_UnknownIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("docs: no such index")))

	s := NewStoreForTest(c, "")
	_, err := s.Execute(context.Background(), "docs", query.Build("x", query.Options{}, category.Book))
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestExecute_SyntaxError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.RedisError("Syntax error at offset 3 near x")))

	s := NewStoreForTest(c, "")
	_, err := s.Execute(context.Background(), "docs", query.Build("x", query.Options{}, category.Book))
	if !errors.Is(err, db.ErrBadQuery) {
		t.Fatalf("expected ErrBadQuery, got %v", err)
	}
}

func TestExecute_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(errors.New("connection refused")))

	s := NewStoreForTest(c, "")
	_, err := s.Execute(context.Background(), "docs", query.Build("x", query.Options{}, category.Book))
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpFTQuery {
		t.Fatalf("expected db.Error with op FT.SEARCH, got %v", err)
	}
}

func TestParseReply_SkipsMalformedEntries(t *testing.T) {
	s := NewStoreForTest(nil, "")
	doc := query.Build("x", query.Options{}, category.Book)

	raw, err := s.parseReply(nil, doc)
	if err != nil || len(raw.Entries()) != 0 {
		t.Fatalf("empty reply: %v, %v", raw, err)
	}
}
