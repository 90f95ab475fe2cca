// Package mcp exposes the catalog as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/moviedeck/internal/catalog"
	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

const maxCast = 10

// MetadataClient is the TMDb surface the tools use.
type MetadataClient interface {
	Queries() tmdb.QueryBuilder
	Fetch(ctx context.Context, q tmdb.Query) (*tmdb.PageResult, error)
	GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	GetTV(ctx context.Context, id int) (*tmdb.TVDetails, error)
	GetCredits(ctx context.Context, media tmdb.MediaType, id int) (*tmdb.Credits, error)
	Genres(ctx context.Context, media tmdb.MediaType) ([]tmdb.Genre, error)
}

// Deps holds dependencies for MCP tool handlers.
type Deps struct {
	TMDb MetadataClient
}

// Server wraps an MCP SDK server with MovieDeck tool handlers.
type Server struct {
	server *mcpsdk.Server
	deps   Deps
	logger *slog.Logger
}

// NewServer creates an MCP server with all MovieDeck tools registered.
func NewServer(deps Deps, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "moviedeck",
			Version: version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, deps: deps, logger: logger}
	srv.registerTools()
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(listTitlesTool(), s.handleListTitles)
	s.server.AddTool(searchTitlesTool(), s.handleSearchTitles)
	s.server.AddTool(getMovieDetailsTool(), s.handleGetMovieDetails)
	s.server.AddTool(getTVDetailsTool(), s.handleGetTVDetails)
	s.server.AddTool(listGenresTool(), s.handleListGenres)
}

func listNames() []any {
	lists := tmdb.Lists()
	names := make([]any, 0, len(lists))
	for _, l := range lists {
		names = append(names, l.Name)
	}
	return names
}

func pageProperty() map[string]any {
	return map[string]any{
		"type":        "integer",
		"minimum":     1,
		"maximum":     tmdb.MaxPage,
		"description": "1-based page number, 20 titles per page (default 1)",
	}
}

func mediaProperty(desc string) map[string]any {
	return map[string]any{
		"type":        "string",
		"enum":        []any{"movie", "tv"},
		"description": desc,
	}
}

func listTitlesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_titles",
		Description: "Get one page of a TMDb list such as popular or top rated movies or TV shows. Optionally narrow to a genre. Returns the titles with page count and total results.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"list": map[string]any{
					"type":        "string",
					"enum":        listNames(),
					"description": "Which list to page through",
				},
				"page": pageProperty(),
				"genre_id": map[string]any{
					"type":        "integer",
					"description": "Optional genre ID (see list_genres); discovers titles of that genre for the list's media type",
				},
			},
			"required": []any{"list"},
		},
	}
}

func searchTitlesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "search_titles",
		Description: "Search movies or TV shows by title. Returns one page of matches with TMDb IDs, titles, release dates and ratings.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Text to search for",
				},
				"media": mediaProperty("Search movies or tv (default movie)"),
				"page":  pageProperty(),
			},
			"required": []any{"query"},
		},
	}
}

func getMovieDetailsTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_movie_details",
		Description: "Get detailed information about a movie by its TMDb ID. Returns runtime, genres, tagline, overview, ratings and top cast.",
		InputSchema: tmdbIDSchema("The TMDb ID of the movie"),
	}
}

func getTVDetailsTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_tv_details",
		Description: "Get detailed information about a TV show by its TMDb ID. Returns seasons, episodes, genres, overview, ratings and top cast.",
		InputSchema: tmdbIDSchema("The TMDb ID of the TV show"),
	}
}

func listGenresTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_genres",
		Description: "List the genre IDs and names TMDb uses for movies or TV shows.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"media": mediaProperty("Genres for movie or tv (default movie)"),
			},
		},
	}
}

func tmdbIDSchema(desc string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tmdb_id": map[string]any{
				"type":        "integer",
				"description": desc,
			},
		},
		"required": []any{"tmdb_id"},
	}
}

// pageResult is the JSON shape of list_titles and search_titles.
type pageResult struct {
	List         string      `json:"list"`
	Page         int         `json:"page"`
	PageCount    int         `json:"page_count"`
	TotalResults int         `json:"total_results"`
	ItemOffset   int         `json:"item_offset"`
	Items        []tmdb.Item `json:"items"`
}

// Tool handlers parse arguments, call TMDb and return JSON text content.

func (s *Server) handleListTitles(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.TMDb == nil {
		return toolError("TMDb client not configured"), nil
	}

	var args struct {
		List    string `json:"list"`
		Page    int    `json:"page"`
		GenreID int    `json:"genre_id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	list, ok := tmdb.LookupList(args.List)
	if !ok {
		return toolError(fmt.Sprintf("unknown list %q", args.List)), nil
	}
	if args.GenreID < 0 {
		return toolError("genre_id must be positive"), nil
	}
	if args.GenreID > 0 {
		list = tmdb.GenreList(list.Media, args.GenreID)
	}
	return s.fetchPage(ctx, list, args.Page)
}

func (s *Server) handleSearchTitles(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.TMDb == nil {
		return toolError("TMDb client not configured"), nil
	}

	var args struct {
		Query string `json:"query"`
		Media string `json:"media"`
		Page  int    `json:"page"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Query == "" {
		return toolError("search_titles requires a 'query' string argument"), nil
	}
	media, err := parseMedia(args.Media)
	if err != nil {
		return toolError(err.Error()), nil
	}
	return s.fetchPage(ctx, tmdb.SearchList(media, args.Query), args.Page)
}

// fetchPage fetches page of list; page 0 means the first page.
func (s *Server) fetchPage(ctx context.Context, list tmdb.List, page int) (*mcpsdk.CallToolResult, error) {
	if page == 0 {
		page = 1
	}
	q, err := s.deps.TMDb.Queries().Build(list, page)
	if err != nil {
		return toolError(err.Error()), nil
	}
	result, err := s.deps.TMDb.Fetch(ctx, q)
	if err != nil {
		s.logger.Warn("list fetch failed",
			slog.String("list", list.Name),
			slog.Int("page", page),
			slog.String("kind", string(tmdb.KindOf(err))),
		)
		return toolError(fmt.Sprintf("tmdb list failed: %v", err)), nil
	}

	state := catalog.Snapshot(page-1, result)
	items := state.Items
	if items == nil {
		items = []tmdb.Item{}
	}
	return toolJSON(pageResult{
		List:         list.Name,
		Page:         state.Page,
		PageCount:    state.PageCount,
		TotalResults: state.TotalResults,
		ItemOffset:   state.ItemOffset,
		Items:        items,
	})
}

func (s *Server) handleGetMovieDetails(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.TMDb == nil {
		return toolError("TMDb client not configured"), nil
	}

	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	details, err := s.deps.TMDb.GetMovie(ctx, tmdbID)
	if err != nil {
		return toolError(fmt.Sprintf("tmdb get movie failed: %v", err)), nil
	}
	return toolJSON(struct {
		*tmdb.MovieDetails
		Cast []tmdb.CastMember `json:"cast"`
	}{details, s.topCast(ctx, tmdb.MediaMovie, tmdbID)})
}

func (s *Server) handleGetTVDetails(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.TMDb == nil {
		return toolError("TMDb client not configured"), nil
	}

	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	details, err := s.deps.TMDb.GetTV(ctx, tmdbID)
	if err != nil {
		return toolError(fmt.Sprintf("tmdb get tv failed: %v", err)), nil
	}
	return toolJSON(struct {
		*tmdb.TVDetails
		Cast []tmdb.CastMember `json:"cast"`
	}{details, s.topCast(ctx, tmdb.MediaTV, tmdbID)})
}

func (s *Server) handleListGenres(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.TMDb == nil {
		return toolError("TMDb client not configured"), nil
	}

	var args struct {
		Media string `json:"media"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
	}
	media, err := parseMedia(args.Media)
	if err != nil {
		return toolError(err.Error()), nil
	}

	genres, err := s.deps.TMDb.Genres(ctx, media)
	if err != nil {
		return toolError(fmt.Sprintf("tmdb genres failed: %v", err)), nil
	}
	return toolJSON(genres)
}

// topCast returns the first billed cast members. Credits are optional:
// a failed lookup yields an empty cast rather than failing the tool.
func (s *Server) topCast(ctx context.Context, media tmdb.MediaType, id int) []tmdb.CastMember {
	credits, err := s.deps.TMDb.GetCredits(ctx, media, id)
	if err != nil || credits == nil {
		if err != nil {
			s.logger.Debug("credits lookup failed", slog.Int("tmdb_id", id), slog.String("error", err.Error()))
		}
		return []tmdb.CastMember{}
	}
	return credits.Cast[:min(len(credits.Cast), maxCast)]
}

// Helper functions.

func parseMedia(raw string) (tmdb.MediaType, error) {
	switch raw {
	case "", string(tmdb.MediaMovie):
		return tmdb.MediaMovie, nil
	case string(tmdb.MediaTV):
		return tmdb.MediaTV, nil
	}
	return "", fmt.Errorf("media must be movie or tv, got %q", raw)
}

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// extractIntFromArgs extracts an integer argument from raw JSON arguments.
func extractIntFromArgs(raw json.RawMessage, key string) (int, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}

	switch v := val.(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}
