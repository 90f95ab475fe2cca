// Package catalog holds the paginated list workflow: pagination state,
// a pure reducer over list events, a controller that derives TMDb queries
// and applies only the most recent response, and the pagination control model.
package catalog

import (
	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

// PageSize is the number of items TMDb returns per listing page.
const PageSize = 20

// Status is the lifecycle phase of a list view.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusErrored:
		return "errored"
	}
	return "unknown"
}

// State is the pagination state of one list view.
type State struct {
	Status Status
	// PageIndex is the zero-based selected page; Page is the 1-based page requested.
	PageIndex int
	Page      int
	// ItemOffset is bookkeeping for display only; requests are made by page number.
	ItemOffset   int
	PageCount    int
	TotalResults int
	Items        []tmdb.Item
	Err          error
	// Seq tags the active request. Responses carrying another Seq are stale.
	Seq uint64
}

// InitialState is page 1 with nothing loaded.
func InitialState() State {
	return State{Status: StatusIdle, Page: 1}
}

// Empty reports whether a loaded page has nothing to show.
func (s State) Empty() bool {
	return s.Status == StatusLoaded && len(s.Items) == 0
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// PageSelected requests the zero-based page Index.
type PageSelected struct {
	Index int
}

// FetchSucceeded delivers the page fetched for request Seq.
type FetchSucceeded struct {
	Seq    uint64
	Result *tmdb.PageResult
}

// FetchFailed delivers the error of request Seq.
type FetchFailed struct {
	Seq uint64
	Err error
}

func (PageSelected) isEvent()   {}
func (FetchSucceeded) isEvent() {}
func (FetchFailed) isEvent()    {}

// PageCount returns ceil(totalResults / pageSize), or 0 when either is not positive.
func PageCount(totalResults, pageSize int) int {
	if totalResults <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalResults + pageSize - 1) / pageSize
}

// Snapshot is the loaded state for page index when the fetch happened
// outside a Controller, as in request/response frontends that keep no
// per-client state.
func Snapshot(index int, result *tmdb.PageResult) State {
	s := State{Status: StatusLoaded, PageIndex: index, Page: index + 1}
	if result == nil {
		return s
	}
	s.TotalResults = max(result.TotalResults, 0)
	s.PageCount = PageCount(s.TotalResults, PageSize)
	if s.TotalResults > 0 {
		s.ItemOffset = (index * PageSize) % s.TotalResults
		s.Items = result.Items
	}
	return s
}

// SelectablePages returns how many pages can be selected: PageCount capped
// at tmdb.MaxPage.
func (s State) SelectablePages() int {
	return min(s.PageCount, tmdb.MaxPage)
}

// CanSelect reports whether index is a valid page selection for s.
// While no page count is known (initial load, empty list, failed first load)
// only the first page is selectable, which is how the view reloads.
func (s State) CanSelect(index int) bool {
	if s.PageCount == 0 {
		return index == 0
	}
	return index >= 0 && index < s.SelectablePages()
}

// Reduce applies ev to s and returns the next state. It never mutates s.Items.
// Invalid selections and stale fetch results leave the state unchanged.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case PageSelected:
		if !s.CanSelect(ev.Index) {
			return s
		}
		s.Seq++
		s.PageIndex = ev.Index
		s.Page = ev.Index + 1
		s.ItemOffset = 0
		if s.TotalResults > 0 {
			s.ItemOffset = (ev.Index * PageSize) % s.TotalResults
		}
		s.Status = StatusLoading
		s.Err = nil
		return s

	case FetchSucceeded:
		if ev.Seq != s.Seq || s.Status != StatusLoading || ev.Result == nil {
			return s
		}
		s.Status = StatusLoaded
		s.Err = nil
		s.TotalResults = max(ev.Result.TotalResults, 0)
		s.PageCount = PageCount(s.TotalResults, PageSize)
		if s.TotalResults == 0 {
			s.Items = nil
		} else {
			s.Items = ev.Result.Items
		}
		return s

	case FetchFailed:
		if ev.Seq != s.Seq || s.Status != StatusLoading {
			return s
		}
		s.Status = StatusErrored
		s.Err = ev.Err
		s.Items = nil
		return s
	}
	return s
}
