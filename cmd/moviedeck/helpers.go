package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/moviedeck/internal/catalog"
	"github.com/vadimtrunov/moviedeck/internal/config"
	"github.com/vadimtrunov/moviedeck/internal/httpclient"
	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	styleRating  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow

	styleActivePage = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true) // cyan bold

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

// pagerOptions lays out the terminal pagination control.
var pagerOptions = catalog.Options{
	PageRange:     5,
	Margin:        2,
	PreviousLabel: "‹",
	NextLabel:     "›",
	BreakLabel:    "…",
}

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// initTMDb creates the TMDb client from the tmdb config section.
func initTMDb(cfg *config.Config, logger *slog.Logger) *tmdb.Client {
	client := tmdb.New(cfg.TMDb.APIKey, tmdb.Options{
		BaseURL:  cfg.TMDb.BaseURL,
		Language: cfg.TMDb.Language,
		HTTP: httpclient.Config{
			Timeout:           time.Duration(cfg.TMDb.TimeoutSeconds) * time.Second,
			RequestsPerSecond: cfg.TMDb.RequestsPerSecond,
			Burst:             httpclient.DefaultConfig().Burst,
		},
	}, logger)
	logger.Debug("TMDb client initialized",
		slog.String("url", sanitizeURL(cfg.TMDb.BaseURL)),
		slog.String("language", cfg.TMDb.Language),
	)
	return client
}

// resolveList picks the list a command pages through. A search or a genre
// narrows the named list's media type; otherwise the named list is used as is.
func resolveList(name string, genreID int, search string) (tmdb.List, string, error) {
	if name == "" {
		name = tmdb.ListPopular.Name
	}
	base, ok := tmdb.LookupList(name)
	if !ok {
		return tmdb.List{}, "", fmt.Errorf("unknown list %q (available: %s)", name, strings.Join(listNames(), ", "))
	}

	mediaLabel := "movies"
	if base.Media == tmdb.MediaTV {
		mediaLabel = "TV shows"
	}
	switch {
	case search != "":
		return tmdb.SearchList(base.Media, search), fmt.Sprintf("Search %s: %q", mediaLabel, search), nil
	case genreID < 0:
		return tmdb.List{}, "", fmt.Errorf("genre must be a positive TMDb genre ID, got %d", genreID)
	case genreID > 0:
		return tmdb.GenreList(base.Media, genreID), fmt.Sprintf("Genre %d %s", genreID, mediaLabel), nil
	}
	return base, listTitle(base), nil
}

func listNames() []string {
	lists := tmdb.Lists()
	names := make([]string, 0, len(lists))
	for _, l := range lists {
		names = append(names, l.Name)
	}
	return names
}

var listTitles = map[string]string{
	tmdb.ListPopular.Name:    "Popular movies",
	tmdb.ListTopRated.Name:   "Top rated movies",
	tmdb.ListUpcoming.Name:   "Upcoming movies",
	tmdb.ListNowPlaying.Name: "Now playing",
	tmdb.ListTVPopular.Name:  "Popular TV shows",
	tmdb.ListTVTopRated.Name: "Top rated TV shows",
}

func listTitle(l tmdb.List) string {
	if title, ok := listTitles[l.Name]; ok {
		return title
	}
	return l.Name
}

// renderItems renders the titles of a loaded page, numbered from the page's item offset.
func renderItems(s catalog.State) string {
	var sb strings.Builder
	for i, item := range s.Items {
		fmt.Fprintf(&sb, "%3d. %s", s.ItemOffset+i+1, item.Title)
		if y := releaseYear(item.ReleaseDate); y != "" {
			sb.WriteString(styleDim.Render(" (" + y + ")"))
		}
		if item.VoteAverage > 0 {
			sb.WriteString(styleRating.Render(fmt.Sprintf(" ★ %.1f", item.VoteAverage)))
		}
		sb.WriteString(styleDim.Render(fmt.Sprintf("  #%d", item.ID)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderPager renders the pagination control on one line, or "" when the list is empty.
func renderPager(s catalog.State) string {
	buttons := catalog.Pages(s.PageIndex, s.SelectablePages(), pagerOptions)
	if len(buttons) == 0 {
		return ""
	}
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		switch {
		case b.Active:
			parts = append(parts, styleActivePage.Render("["+b.Label+"]"))
		case b.Disabled, b.Kind == catalog.ButtonBreak:
			parts = append(parts, styleDim.Render(b.Label))
		default:
			parts = append(parts, b.Label)
		}
	}
	return strings.Join(parts, " ")
}

// releaseYear returns the year of a YYYY-MM-DD date, or "" when unknown.
func releaseYear(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// sanitizeURL strips credentials, query params, and fragment from a URL for safe logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "<redacted>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
