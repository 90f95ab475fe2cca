package tmdb

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const defaultLanguage = "en-US"

// MaxPage is the highest listing page TMDb serves; later pages are rejected
// upstream even when total_results implies more.
const MaxPage = 500

// ErrInvalidPage is returned when a query is built for a page outside [1, MaxPage].
var ErrInvalidPage = errors.New("page must be between 1 and 500")

// List is a paginated TMDb endpoint variant.
type List struct {
	Name   string
	Path   string
	Media  MediaType
	Params url.Values
}

// Named lists available out of the box.
var (
	ListPopular    = List{Name: "popular", Path: "/movie/popular", Media: MediaMovie}
	ListTopRated   = List{Name: "top_rated", Path: "/movie/top_rated", Media: MediaMovie}
	ListUpcoming   = List{Name: "upcoming", Path: "/movie/upcoming", Media: MediaMovie}
	ListNowPlaying = List{Name: "now_playing", Path: "/movie/now_playing", Media: MediaMovie}
	ListTVPopular  = List{Name: "tv_popular", Path: "/tv/popular", Media: MediaTV}
	ListTVTopRated = List{Name: "tv_top_rated", Path: "/tv/top_rated", Media: MediaTV}
)

var namedLists = []List{ListPopular, ListTopRated, ListUpcoming, ListNowPlaying, ListTVPopular, ListTVTopRated}

// Lists returns the named lists in display order.
func Lists() []List {
	out := make([]List, len(namedLists))
	copy(out, namedLists)
	return out
}

// LookupList finds a named list.
func LookupList(name string) (List, bool) {
	for _, l := range namedLists {
		if l.Name == name {
			return l, true
		}
	}
	return List{}, false
}

// GenreList discovers titles of one genre.
func GenreList(media MediaType, genreID int) List {
	return List{
		Name:   fmt.Sprintf("genre:%s:%d", media, genreID),
		Path:   "/discover/" + string(media),
		Media:  media,
		Params: url.Values{"with_genres": {strconv.Itoa(genreID)}},
	}
}

// SearchList searches titles by text.
func SearchList(media MediaType, text string) List {
	return List{
		Name:  "search:" + string(media),
		Path:  "/search/" + string(media),
		Media: media,
		Params: url.Values{
			"query":         {text},
			"include_adult": {"false"},
		},
	}
}

// Query is a fully resolved request URL for one page of a list.
type Query struct {
	url   string
	path  string
	page  int
	media MediaType
}

// URL returns the absolute request URL, API key included.
func (q Query) URL() string { return q.url }

// Page returns the 1-based page the query addresses.
func (q Query) Page() int { return q.page }

// Endpoint returns the API path, safe for logs and metrics.
func (q Query) Endpoint() string { return q.path }

// Media returns the media type of the listed items.
func (q Query) Media() MediaType { return q.media }

// String redacts the API key.
func (q Query) String() string {
	return fmt.Sprintf("%s?page=%d", q.path, q.page)
}

// QueryBuilder derives queries from a fixed endpoint, key and language.
type QueryBuilder struct {
	baseURL  string
	apiKey   string
	language string
}

// NewQueryBuilder creates a builder. An empty language defaults to en-US.
func NewQueryBuilder(baseURL, apiKey, language string) QueryBuilder {
	if language == "" {
		language = defaultLanguage
	}
	return QueryBuilder{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		language: language,
	}
}

// Build returns the query for the given 1-based page of a list.
func (b QueryBuilder) Build(list List, page int) (Query, error) {
	if page < 1 || page > MaxPage {
		return Query{}, fmt.Errorf("build %s query for page %d: %w", list.Name, page, ErrInvalidPage)
	}
	params := url.Values{}
	for k, vs := range list.Params {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	params.Set("page", strconv.Itoa(page))

	u, err := b.resolve(list.Path, params)
	if err != nil {
		return Query{}, err
	}
	return Query{url: u, path: list.Path, page: page, media: list.Media}, nil
}

// resolve builds an absolute URL with api_key and language set.
func (b QueryBuilder) resolve(path string, params url.Values) (string, error) {
	u, err := url.Parse(b.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("invalid URL: %q is not absolute", b.baseURL+path)
	}

	q := u.Query()
	q.Set("api_key", b.apiKey)
	q.Set("language", b.language)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
