package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/vadimtrunov/moviedeck/internal/httpclient"
	"github.com/vadimtrunov/moviedeck/internal/metrics"
)

const (
	// DefaultBaseURL is the TMDb API v3 root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p/"

	maxErrorBody = 4 << 10
)

// Client is a TMDb API v3 client. It keeps no state between calls:
// identical queries hit the network every time.
type Client struct {
	queries QueryBuilder
	http    *httpclient.Client
	logger  *slog.Logger
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL  string
	Language string
	HTTP     httpclient.Config
}

// New creates a new TMDb client.
func New(apiKey string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTP == (httpclient.Config{}) {
		opts.HTTP = httpclient.DefaultConfig()
	}
	return &Client{
		queries: NewQueryBuilder(opts.BaseURL, apiKey, opts.Language),
		http:    httpclient.New(opts.HTTP, logger),
		logger:  logger,
	}
}

// NewForTest creates a TMDb client with a custom base URL for testing.
// Exported because it is used by cross-package tests.
func NewForTest(baseURL string, logger *slog.Logger) *Client {
	return New("test-key", Options{BaseURL: baseURL, HTTP: httpclient.Config{Timeout: httpclient.DefaultConfig().Timeout}}, logger)
}

// Queries returns the builder used to derive list queries.
func (c *Client) Queries() QueryBuilder {
	return c.queries
}

// Fetch performs one GET for q and decodes the listing page.
func (c *Client) Fetch(ctx context.Context, q Query) (*PageResult, error) {
	var resp listResponse
	if err := c.do(ctx, q.URL(), q.Endpoint(), q.Endpoint(), &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, c.fail(&FetchError{
			Kind:     KindParse,
			Endpoint: q.Endpoint(),
			Message:  "response has no results field",
		})
	}

	items := make([]Item, 0, len(*resp.Results))
	for _, r := range *resp.Results {
		items = append(items, r.toItem(q.Media()))
	}
	return &PageResult{
		Page:         resp.Page,
		Items:        items,
		TotalResults: max(resp.TotalResults, 0),
		TotalPages:   resp.TotalPages,
	}, nil
}

// FetchList builds the query for a page of list and fetches it.
func (c *Client) FetchList(ctx context.Context, list List, page int) (*PageResult, error) {
	q, err := c.queries.Build(list, page)
	if err != nil {
		return nil, err
	}
	return c.Fetch(ctx, q)
}

// GetMovie retrieves full details for a movie by TMDb ID.
func (c *Client) GetMovie(ctx context.Context, id int) (*MovieDetails, error) {
	var details MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), "/movie/{id}", &details); err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	return &details, nil
}

// GetTV retrieves full details for a TV show by TMDb ID.
func (c *Client) GetTV(ctx context.Context, id int) (*TVDetails, error) {
	var details TVDetails
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), "/tv/{id}", &details); err != nil {
		return nil, fmt.Errorf("get tv %d: %w", id, err)
	}
	return &details, nil
}

// GetCredits returns the cast of a movie or TV show.
func (c *Client) GetCredits(ctx context.Context, media MediaType, id int) (*Credits, error) {
	var credits Credits
	path := fmt.Sprintf("/%s/%d/credits", media, id)
	if err := c.get(ctx, path, "/"+string(media)+"/{id}/credits", &credits); err != nil {
		return nil, fmt.Errorf("get credits for %s %d: %w", media, id, err)
	}
	return &credits, nil
}

// Genres lists the genres for a media type.
func (c *Client) Genres(ctx context.Context, media MediaType) ([]Genre, error) {
	var resp genresResponse
	if err := c.get(ctx, "/genre/"+string(media)+"/list", "", &resp); err != nil {
		return nil, fmt.Errorf("list %s genres: %w", media, err)
	}
	return resp.Genres, nil
}

// PosterURL returns the full URL for a poster path.
func PosterURL(posterPath, size string) string {
	if posterPath == "" {
		return ""
	}
	return imageBaseURL + size + posterPath
}

// get resolves path against the base URL and decodes the JSON response.
// label replaces path in metrics when path embeds an ID; empty means path.
func (c *Client) get(ctx context.Context, path, label string, result any) error {
	u, err := c.queries.resolve(path, nil)
	if err != nil {
		return err
	}
	if label == "" {
		label = path
	}
	return c.do(ctx, u, path, label, result)
}

// do performs an authenticated GET request and decodes the JSON body into result.
// Every failure is returned as a *FetchError.
func (c *Client) do(ctx context.Context, rawURL, endpoint, label string, result any) error {
	reqID := uuid.NewString()
	logger := c.logger.With(slog.String("request_id", reqID), slog.String("endpoint", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return c.fail(&FetchError{Kind: KindNetwork, Endpoint: endpoint, Err: errors.New("create request: invalid URL")})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req, label)
	if err != nil {
		// The transport error quotes the request URL, api_key included.
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = endpoint
		}
		logger.Warn("tmdb request failed", slog.String("error", err.Error()))
		return c.fail(&FetchError{Kind: KindNetwork, Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		fe := &FetchError{Kind: KindBadResponse, Endpoint: endpoint, StatusCode: resp.StatusCode}
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
			fe.Message = apiErr.StatusMessage
		}
		logger.Warn("tmdb returned error status", slog.Int("status", resp.StatusCode))
		return c.fail(fe)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		logger.Warn("tmdb response not decodable", slog.String("error", err.Error()))
		return c.fail(&FetchError{Kind: KindParse, Endpoint: endpoint, Err: err})
	}
	return nil
}

// fail records the error kind and returns it unchanged.
func (c *Client) fail(fe *FetchError) *FetchError {
	metrics.FetchErrors.WithLabelValues(string(fe.Kind)).Inc()
	return fe
}
