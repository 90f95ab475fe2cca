package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

// mockTMDb implements MetadataClient for testing.
type mockTMDb struct {
	mu       sync.Mutex
	queries  []tmdb.Query
	page     *tmdb.PageResult
	fetchErr error

	details    *tmdb.MovieDetails
	tv         *tmdb.TVDetails
	detailsErr error
	credits    *tmdb.Credits
	creditsErr error
	genres     []tmdb.Genre
	genreMedia tmdb.MediaType
}

func (m *mockTMDb) Queries() tmdb.QueryBuilder {
	return tmdb.NewQueryBuilder("https://api.example.test/3", "key", "en-US")
}

func (m *mockTMDb) Fetch(_ context.Context, q tmdb.Query) (*tmdb.PageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	return m.page, m.fetchErr
}

func (m *mockTMDb) lastQuery(t *testing.T) tmdb.Query {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queries) == 0 {
		t.Fatal("no query was fetched")
	}
	return m.queries[len(m.queries)-1]
}

func (m *mockTMDb) GetMovie(_ context.Context, _ int) (*tmdb.MovieDetails, error) {
	return m.details, m.detailsErr
}

func (m *mockTMDb) GetTV(_ context.Context, _ int) (*tmdb.TVDetails, error) {
	return m.tv, m.detailsErr
}

func (m *mockTMDb) GetCredits(_ context.Context, _ tmdb.MediaType, _ int) (*tmdb.Credits, error) {
	return m.credits, m.creditsErr
}

func (m *mockTMDb) Genres(_ context.Context, media tmdb.MediaType) ([]tmdb.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.genreMedia = media
	return m.genres, nil
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	_, err := srv.MCPServer().Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}
	return result
}

func resultText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func matrixPage(total int) *tmdb.PageResult {
	return &tmdb.PageResult{
		Page:         2,
		Items:        []tmdb.Item{{ID: 603, Title: "The Matrix", MediaType: tmdb.MediaMovie}},
		TotalResults: total,
	}
}

func TestListTitles(t *testing.T) {
	t.Parallel()
	mock := &mockTMDb{page: matrixPage(45)}
	srv := NewServer(Deps{TMDb: mock}, "test", discardLogger)

	result := callTool(t, srv, "list_titles", map[string]any{"list": "top_rated", "page": 2})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}
	var got pageResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if got.List != "top_rated" || got.Page != 2 || got.PageCount != 3 || got.ItemOffset != 20 {
		t.Errorf("unexpected page metadata: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].ID != 603 {
		t.Errorf("unexpected items: %+v", got.Items)
	}

	q := mock.lastQuery(t)
	if q.Endpoint() != "/movie/top_rated" || q.Page() != 2 {
		t.Errorf("query = %s", q)
	}
}

func TestListTitles_Genre(t *testing.T) {
	t.Parallel()
	mock := &mockTMDb{page: matrixPage(1)}
	srv := NewServer(Deps{TMDb: mock}, "test", discardLogger)

	result := callTool(t, srv, "list_titles", map[string]any{"list": "tv_popular", "genre_id": 18})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	q := mock.lastQuery(t)
	if q.Endpoint() != "/discover/tv" || q.Page() != 1 {
		t.Errorf("query = %s", q)
	}
	if !strings.Contains(q.URL(), "with_genres=18") {
		t.Errorf("genre missing from %s", q)
	}
}

func TestListTitles_Empty(t *testing.T) {
	t.Parallel()
	srv := NewServer(Deps{TMDb: &mockTMDb{page: &tmdb.PageResult{Page: 1}}}, "test", discardLogger)

	result := callTool(t, srv, "list_titles", map[string]any{"list": "upcoming"})
	if result.IsError {
		t.Fatal("an empty list is not an error")
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"items":[]`) || !strings.Contains(text, `"page_count":0`) {
		t.Errorf("unexpected empty page: %s", text)
	}
}

func TestListTitles_FetchError(t *testing.T) {
	t.Parallel()
	mock := &mockTMDb{fetchErr: &tmdb.FetchError{Kind: tmdb.KindNetwork, Endpoint: "/movie/popular", Err: errors.New("refused")}}
	srv := NewServer(Deps{TMDb: mock}, "test", discardLogger)

	result := callTool(t, srv, "list_titles", map[string]any{"list": "popular"})
	if !result.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(resultText(t, result), "network") {
		t.Errorf("error should name the failure kind: %s", resultText(t, result))
	}
}

func TestSearchTitles(t *testing.T) {
	t.Parallel()
	mock := &mockTMDb{page: matrixPage(1)}
	srv := NewServer(Deps{TMDb: mock}, "test", discardLogger)

	result := callTool(t, srv, "search_titles", map[string]any{"query": "matrix", "media": "tv", "page": 3})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	q := mock.lastQuery(t)
	if q.Endpoint() != "/search/tv" || q.Page() != 3 {
		t.Errorf("query = %s", q)
	}
	if !strings.Contains(q.URL(), "query=matrix") {
		t.Errorf("search text missing from %s", q)
	}
}

func TestGetMovieDetails(t *testing.T) {
	t.Parallel()
	srv := NewServer(Deps{TMDb: &mockTMDb{
		details: &tmdb.MovieDetails{ID: 27205, Title: "Inception", Runtime: 148},
		credits: &tmdb.Credits{Cast: []tmdb.CastMember{{Name: "Leonardo DiCaprio", Character: "Cobb"}}},
	}}, "test", discardLogger)

	result := callTool(t, srv, "get_movie_details", map[string]any{"tmdb_id": 27205})

	if result.IsError {
		t.Fatal("expected success, got error")
	}
	var got struct {
		tmdb.MovieDetails
		Cast []tmdb.CastMember `json:"cast"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Runtime != 148 {
		t.Errorf("expected runtime 148, got %d", got.Runtime)
	}
	if len(got.Cast) != 1 || got.Cast[0].Character != "Cobb" {
		t.Errorf("unexpected cast: %+v", got.Cast)
	}
}

func TestGetMovieDetails_CreditsOptional(t *testing.T) {
	t.Parallel()
	srv := NewServer(Deps{TMDb: &mockTMDb{
		details:    &tmdb.MovieDetails{ID: 1, Title: "Obscure"},
		creditsErr: errors.New("boom"),
	}}, "test", discardLogger)

	result := callTool(t, srv, "get_movie_details", map[string]any{"tmdb_id": 1})
	if result.IsError {
		t.Fatal("missing credits must not fail the tool")
	}
	if !strings.Contains(resultText(t, result), `"cast":[]`) {
		t.Errorf("expected empty cast: %s", resultText(t, result))
	}
}

func TestGetTVDetails(t *testing.T) {
	t.Parallel()
	srv := NewServer(Deps{TMDb: &mockTMDb{
		tv: &tmdb.TVDetails{ID: 1396, Name: "Breaking Bad", NumberOfSeasons: 5},
	}}, "test", discardLogger)

	result := callTool(t, srv, "get_tv_details", map[string]any{"tmdb_id": "1396"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	var got tmdb.TVDetails
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "Breaking Bad" || got.NumberOfSeasons != 5 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestListGenres(t *testing.T) {
	t.Parallel()
	mock := &mockTMDb{genres: []tmdb.Genre{{ID: 18, Name: "Drama"}}}
	srv := NewServer(Deps{TMDb: mock}, "test", discardLogger)

	result := callTool(t, srv, "list_genres", map[string]any{"media": "tv"})
	if result.IsError {
		t.Fatal("expected success, got error")
	}
	var got []tmdb.Genre
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Drama" {
		t.Errorf("unexpected result: %+v", got)
	}
	if mock.genreMedia != tmdb.MediaTV {
		t.Errorf("media = %q, want tv", mock.genreMedia)
	}
}

func TestToolError_NilDependency(t *testing.T) {
	t.Parallel()
	srv := NewServer(Deps{}, "test", discardLogger)

	tests := []struct {
		tool string
		args map[string]any
	}{
		{"list_titles", map[string]any{"list": "popular"}},
		{"search_titles", map[string]any{"query": "Test"}},
		{"get_movie_details", map[string]any{"tmdb_id": 1}},
		{"get_tv_details", map[string]any{"tmdb_id": 1}},
		{"list_genres", map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			t.Parallel()
			result := callTool(t, srv, tt.tool, tt.args)
			if !result.IsError {
				t.Errorf("expected error for %s with nil dependency", tt.tool)
			}
		})
	}
}

func TestToolError_BadArgs(t *testing.T) {
	t.Parallel()
	srv := NewServer(Deps{TMDb: &mockTMDb{page: matrixPage(1)}}, "test", discardLogger)

	tests := []struct {
		name string
		tool string
		args map[string]any
	}{
		{"missing query", "search_titles", map[string]any{}},
		{"bad media", "search_titles", map[string]any{"query": "x", "media": "book"}},
		{"missing id", "get_movie_details", map[string]any{}},
		{"non-numeric id", "get_tv_details", map[string]any{"tmdb_id": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if result := callTool(t, srv, tt.tool, tt.args); !result.IsError {
				t.Errorf("expected error for %s %v", tt.tool, tt.args)
			}
		})
	}
}

func TestParseMedia(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]tmdb.MediaType{"": tmdb.MediaMovie, "movie": tmdb.MediaMovie, "tv": tmdb.MediaTV} {
		got, err := parseMedia(in)
		if err != nil || got != want {
			t.Errorf("parseMedia(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := parseMedia("book"); err == nil {
		t.Error("expected error for unknown media")
	}
}
