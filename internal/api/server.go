// Package api serves the catalog over HTTP with echo.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
	"github.com/vadimtrunov/moviedeck/internal/metrics"
)

// GracefulShutdownTimeout bounds how long in-flight requests may finish after Run's ctx ends.
const GracefulShutdownTimeout = 10 * time.Second

// Metadata is the subset of the TMDb client the API needs.
type Metadata interface {
	Queries() tmdb.QueryBuilder
	Fetch(ctx context.Context, q tmdb.Query) (*tmdb.PageResult, error)
	GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error)
	GetTV(ctx context.Context, id int) (*tmdb.TVDetails, error)
	GetCredits(ctx context.Context, media tmdb.MediaType, id int) (*tmdb.Credits, error)
	Genres(ctx context.Context, media tmdb.MediaType) ([]tmdb.Genre, error)
}

// Config holds the listener settings.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Server is the HTTP API.
type Server struct {
	Echo *echo.Echo

	cfg    Config
	meta   Metadata
	logger *slog.Logger
}

// NewServer creates a server with middlewares and routes registered.
func NewServer(cfg Config, meta Metadata, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{
		Echo:   e,
		cfg:    cfg,
		meta:   meta,
		logger: logger,
	}
	s.setupMiddlewares()
	s.routes()
	return s
}

func (s *Server) setupMiddlewares() {
	s.Echo.Use(requestLogger(s.logger))
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))
}

func (s *Server) routes() {
	s.Echo.GET("/healthz", s.healthz)
	s.Echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	v1 := s.Echo.Group("/api/v1")
	v1.GET("/lists", s.listIndex)
	v1.GET("/lists/:list", s.listPage)
	v1.GET("/movies/:id", s.movieDetails)
	v1.GET("/tv/:id", s.tvDetails)
	v1.GET("/genres/:media", s.genres)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", slog.String("addr", addr))
		if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http api")
	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
