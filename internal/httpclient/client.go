package httpclient

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/vadimtrunov/moviedeck/internal/metrics"
)

// Config holds pacing and timeout configuration.
type Config struct {
	Timeout time.Duration
	// RequestsPerSecond caps outbound requests; zero disables pacing.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns sensible defaults for the TMDb API.
func DefaultConfig() Config {
	return Config{
		Timeout:           10 * time.Second,
		RequestsPerSecond: 20,
		Burst:             5,
	}
}

// Client wraps http.Client with request pacing, logging and metrics.
// It never retries: a failed request is returned to the caller as is.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New creates a new Client with a default http.Client.
func New(cfg Config, logger *slog.Logger) *Client {
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a Client with a custom http.Client.
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:    httpClient,
		limiter: newLimiter(cfg),
		logger:  logger,
	}
}

func newLimiter(cfg Config) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// Do waits for a pacing slot and executes the request once.
// endpoint labels the request in metrics and logs; it should not contain secrets.
func (c *Client) Do(req *http.Request, endpoint string) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	metrics.RequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())

	if err != nil {
		metrics.RequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.logger.Debug("request failed",
			slog.String("endpoint", endpoint),
			slog.String("duration", elapsed.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	metrics.RequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("request completed",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.String("duration", elapsed.String()),
	)
	return resp, nil
}
