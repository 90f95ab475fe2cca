package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviedeck/internal/config"
	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

const showCast = 8

func newShowCmd() *cobra.Command {
	var tv bool
	cmd := &cobra.Command{
		Use:   "show <tmdb-id>",
		Short: "Show details of a movie or TV show",
		Example: `  moviedeck show 603
  moviedeck show 1396 --tv`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("tmdb-id must be a positive number, got %q", args[0])
			}
			media := tmdb.MediaMovie
			if tv {
				media = tmdb.MediaTV
			}
			return runShow(media, id)
		},
	}
	cmd.Flags().BoolVar(&tv, "tv", false, "look up a TV show instead of a movie")
	return cmd
}

func runShow(media tmdb.MediaType, id int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := config.SetupLoggerTo(os.Stderr, cfg.App.LogLevel)
	client := initTMDb(cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runTask(ctx, "Looking up "+string(media)+" "+strconv.Itoa(id)+"...", func(ctx context.Context) (string, error) {
		var d details
		switch media {
		case tmdb.MediaTV:
			tv, err := client.GetTV(ctx, id)
			if err != nil {
				return "", fmt.Errorf("get tv %d: %w", id, err)
			}
			d = tvDetails(tv)
		default:
			m, err := client.GetMovie(ctx, id)
			if err != nil {
				return "", fmt.Errorf("get movie %d: %w", id, err)
			}
			d = movieDetails(m)
		}

		// The detail page renders without cast when credits are unavailable.
		if credits, err := client.GetCredits(ctx, media, id); err == nil {
			d.cast = credits.Cast
		}
		return renderDetails(d), nil
	})
}

func newGenresCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "genres [movie|tv]",
		Short:     "List TMDb genre IDs",
		Long:      "List the genre IDs accepted by --genre.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(tmdb.MediaMovie), string(tmdb.MediaTV)},
		RunE: func(_ *cobra.Command, args []string) error {
			media := tmdb.MediaMovie
			if len(args) > 0 {
				media = tmdb.MediaType(args[0])
			}
			return runGenres(media)
		},
	}
}

func runGenres(media tmdb.MediaType) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := config.SetupLoggerTo(os.Stderr, cfg.App.LogLevel)
	client := initTMDb(cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runTask(ctx, "Loading genres...", func(ctx context.Context) (string, error) {
		genres, err := client.Genres(ctx, media)
		if err != nil {
			return "", fmt.Errorf("list %s genres: %w", media, err)
		}
		return renderGenres(media, genres), nil
	})
}

// details is the common shape of the movie and TV detail views.
type details struct {
	title    string
	date     string
	tagline  string
	overview string
	rating   float64
	votes    int
	facts    []string
	genres   []tmdb.Genre
	poster   string
	cast     []tmdb.CastMember
}

func movieDetails(m *tmdb.MovieDetails) details {
	d := details{
		title: m.Title, date: m.ReleaseDate, tagline: m.Tagline, overview: m.Overview,
		rating: m.VoteAverage, votes: m.VoteCount, genres: m.Genres, poster: m.PosterPath,
	}
	if m.Runtime > 0 {
		d.facts = append(d.facts, fmt.Sprintf("%d min", m.Runtime))
	}
	if m.Status != "" {
		d.facts = append(d.facts, m.Status)
	}
	if m.IMDbID != "" {
		d.facts = append(d.facts, "imdb.com/title/"+m.IMDbID)
	}
	return d
}

func tvDetails(tv *tmdb.TVDetails) details {
	d := details{
		title: tv.Name, date: tv.FirstAirDate, tagline: tv.Tagline, overview: tv.Overview,
		rating: tv.VoteAverage, votes: tv.VoteCount, genres: tv.Genres, poster: tv.PosterPath,
	}
	if tv.NumberOfSeasons > 0 {
		d.facts = append(d.facts, fmt.Sprintf("%d seasons, %d episodes", tv.NumberOfSeasons, tv.NumberOfEpisodes))
	}
	if tv.Status != "" {
		d.facts = append(d.facts, tv.Status)
	}
	return d
}

func renderDetails(d details) string {
	var sb strings.Builder

	title := d.title
	if y := releaseYear(d.date); y != "" {
		title += " (" + y + ")"
	}
	sb.WriteString(styleHeader.Render(title))
	sb.WriteString("\n")

	if d.tagline != "" {
		sb.WriteString(styleInfo.Render(d.tagline) + "\n")
	}
	if d.rating > 0 {
		sb.WriteString(styleRating.Render(fmt.Sprintf("★ %.1f", d.rating)) + styleDim.Render(fmt.Sprintf(" (%d votes)", d.votes)) + "\n")
	}
	if len(d.facts) > 0 {
		sb.WriteString(strings.Join(d.facts, " · ") + "\n")
	}
	if len(d.genres) > 0 {
		names := make([]string, 0, len(d.genres))
		for _, g := range d.genres {
			names = append(names, g.Name)
		}
		sb.WriteString(styleDim.Render(strings.Join(names, ", ")) + "\n")
	}
	if d.overview != "" {
		sb.WriteString("\n" + d.overview + "\n")
	}
	if len(d.cast) > 0 {
		sb.WriteString("\n" + styleDim.Render("Cast:") + "\n")
		for _, c := range d.cast[:min(len(d.cast), showCast)] {
			line := "  " + c.Name
			if c.Character != "" {
				line += styleDim.Render(" as " + c.Character)
			}
			sb.WriteString(line + "\n")
		}
	}
	if poster := tmdb.PosterURL(d.poster, "w500"); poster != "" {
		sb.WriteString("\n" + styleDim.Render(poster) + "\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
