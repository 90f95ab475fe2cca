package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
	"github.com/vadimtrunov/moviedeck/internal/metrics"
)

// ErrPageOutOfRange is returned when a selection falls outside [0, SelectablePages).
var ErrPageOutOfRange = errors.New("page index out of range")

var errEmptyResult = errors.New("fetcher returned no page")

// Fetcher fetches one listing page.
type Fetcher interface {
	Fetch(ctx context.Context, q tmdb.Query) (*tmdb.PageResult, error)
}

// Request is a fetch the caller must perform, tagged with the sequence number
// that its result has to carry back to Resolve.
type Request struct {
	Seq   uint64
	Query tmdb.Query
}

// Controller owns the pagination state of one list view.
// It is safe for concurrent use; frontends that handle updates on several
// goroutines rely on Seq to keep only the latest response.
type Controller struct {
	mu       sync.Mutex
	list     tmdb.List
	queries  tmdb.QueryBuilder
	state    State
	started  bool
	frontend string
	logger   *slog.Logger
}

// NewController creates a controller for list. frontend labels metrics.
func NewController(list tmdb.List, queries tmdb.QueryBuilder, frontend string, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		list:     list,
		queries:  queries,
		state:    InitialState(),
		frontend: frontend,
		logger:   logger.With(slog.String("list", list.Name)),
	}
}

// List returns the list this controller pages through.
func (c *Controller) List() tmdb.List {
	return c.list
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start returns the request for the first page. Only the first call
// issues a request; later calls return ok=false.
func (c *Controller) Start() (Request, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return Request{}, false, nil
	}
	req, err := c.selectLocked(0)
	if err != nil {
		return Request{}, false, err
	}
	c.started = true
	return req, true, nil
}

// SelectPage moves to the zero-based page index and returns the request to issue.
func (c *Controller) SelectPage(index int) (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectLocked(index)
}

func (c *Controller) selectLocked(index int) (Request, error) {
	if !c.state.CanSelect(index) {
		return Request{}, fmt.Errorf("select page %d of %d: %w", index, c.state.PageCount, ErrPageOutOfRange)
	}
	q, err := c.queries.Build(c.list, index+1)
	if err != nil {
		return Request{}, err
	}
	c.state = Reduce(c.state, PageSelected{Index: index})
	c.started = true
	c.logger.Debug("page selected",
		slog.Int("page", q.Page()),
		slog.Uint64("seq", c.state.Seq),
	)
	return Request{Seq: c.state.Seq, Query: q}, nil
}

// Resolve applies the outcome of request seq. It reports false when the
// response is stale and was discarded. A nil result without an error counts
// as a parse failure.
func (c *Controller) Resolve(seq uint64, result *tmdb.PageResult, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.state.Seq {
		metrics.StaleResponses.WithLabelValues(c.frontend).Inc()
		c.logger.Debug("discarding stale response",
			slog.Uint64("seq", seq),
			slog.Uint64("active_seq", c.state.Seq),
		)
		return false
	}

	if err == nil && result == nil {
		err = &tmdb.FetchError{Kind: tmdb.KindParse, Endpoint: c.list.Path, Err: errEmptyResult}
	}
	if err != nil {
		c.state = Reduce(c.state, FetchFailed{Seq: seq, Err: err})
		c.logger.Warn("page fetch failed",
			slog.Int("page", c.state.Page),
			slog.String("kind", string(tmdb.KindOf(err))),
			slog.String("error", err.Error()),
		)
		return true
	}
	c.state = Reduce(c.state, FetchSucceeded{Seq: seq, Result: result})
	return true
}

// Load performs req with f and resolves it. The returned bool is Resolve's.
func (c *Controller) Load(ctx context.Context, f Fetcher, req Request) bool {
	result, err := f.Fetch(ctx, req.Query)
	return c.Resolve(req.Seq, result, err)
}
