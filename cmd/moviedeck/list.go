package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviedeck/internal/catalog"
	"github.com/vadimtrunov/moviedeck/internal/config"
	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

func newListCmd() *cobra.Command {
	var (
		page    int
		genreID int
		search  string
	)
	cmd := &cobra.Command{
		Use:   "list [list]",
		Short: "Print one page of a TMDb list",
		Long: "Fetch a single page of a list and print it.\n" +
			"Lists: " + strings.Join(listNames(), ", ") + " (default popular).",
		Example: `  moviedeck list upcoming --page 2
  moviedeck list --search dune`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			return runList(name, page, genreID, search)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "1-based page number")
	cmd.Flags().IntVar(&genreID, "genre", 0, "discover titles of this TMDb genre ID")
	cmd.Flags().StringVar(&search, "search", "", "search titles instead of listing")
	return cmd
}

func runList(name string, page, genreID int, search string) error {
	if page < 1 {
		return fmt.Errorf("--page must be at least 1, got %d", page)
	}
	list, title, err := resolveList(name, genreID, search)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := config.SetupLoggerTo(os.Stderr, cfg.App.LogLevel)
	client := initTMDb(cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runTask(ctx, "Loading "+strings.ToLower(title)+"...", func(ctx context.Context) (string, error) {
		result, err := client.FetchList(ctx, list, page)
		if err != nil {
			return "", fmt.Errorf("fetch %s page %d: %w", list.Name, page, err)
		}
		return renderPage(title, catalog.Snapshot(page-1, result)), nil
	})
}

// renderPage renders a loaded page for one-shot output.
func renderPage(title string, s catalog.State) string {
	var sb strings.Builder
	sb.WriteString(styleHeader.Render(title))
	sb.WriteString("\n")

	switch {
	case s.TotalResults == 0:
		sb.WriteString(styleDim.Render("No titles found."))
		return sb.String()
	case len(s.Items) == 0:
		sb.WriteString(styleDim.Render(fmt.Sprintf("Page %d is past the end: the list has %d pages.", s.Page, s.PageCount)))
		return sb.String()
	}

	sb.WriteString(styleDim.Render(fmt.Sprintf("Page %d of %d · %d titles", s.Page, s.PageCount, s.TotalResults)))
	sb.WriteString("\n\n")
	sb.WriteString(renderItems(s))
	if pager := renderPager(s); pager != "" {
		sb.WriteString("\n" + pager)
	}
	return sb.String()
}

// renderGenres renders a genre table.
func renderGenres(media tmdb.MediaType, genres []tmdb.Genre) string {
	var sb strings.Builder
	label := "Movie genres"
	if media == tmdb.MediaTV {
		label = "TV genres"
	}
	sb.WriteString(styleHeader.Render(label))
	sb.WriteString("\n")
	if len(genres) == 0 {
		sb.WriteString(styleDim.Render("No genres."))
		return sb.String()
	}
	for _, g := range genres {
		fmt.Fprintf(&sb, "%6d  %s\n", g.ID, g.Name)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
