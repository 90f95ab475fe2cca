package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vadimtrunov/moviedeck/internal/catalog"
	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

const (
	posterSize = "w500"
	maxCast    = 10
)

type listInfo struct {
	Name  string `json:"name"`
	Media string `json:"media"`
}

type itemResponse struct {
	tmdb.Item
	PosterURL string `json:"poster_url,omitempty"`
}

type buttonResponse struct {
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Page     int    `json:"page"`
	Active   bool   `json:"active,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

type pageResponse struct {
	List         string           `json:"list"`
	Status       string           `json:"status"`
	Page         int              `json:"page"`
	PageCount    int              `json:"page_count"`
	TotalResults int              `json:"total_results"`
	ItemOffset   int              `json:"item_offset"`
	Items        []itemResponse   `json:"items"`
	Pagination   []buttonResponse `json:"pagination,omitempty"`
}

type movieResponse struct {
	*tmdb.MovieDetails
	PosterURL string            `json:"poster_url,omitempty"`
	Cast      []tmdb.CastMember `json:"cast"`
}

type tvResponse struct {
	*tmdb.TVDetails
	PosterURL string            `json:"poster_url,omitempty"`
	Cast      []tmdb.CastMember `json:"cast"`
}

var buttonKinds = map[catalog.ButtonKind]string{
	catalog.ButtonPrevious: "previous",
	catalog.ButtonPage:     "page",
	catalog.ButtonBreak:    "break",
	catalog.ButtonNext:     "next",
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listIndex(c echo.Context) error {
	lists := tmdb.Lists()
	out := make([]listInfo, 0, len(lists))
	for _, l := range lists {
		out = append(out, listInfo{Name: l.Name, Media: string(l.Media)})
	}
	return c.JSON(http.StatusOK, out)
}

// listPage serves one page of a named list. The genre and query parameters
// narrow the list to a discover or search over the same media type.
func (s *Server) listPage(c echo.Context) error {
	list, ok := tmdb.LookupList(c.Param("list"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown list "+strconv.Quote(c.Param("list")))
	}

	page, err := parsePage(c.QueryParam("page"))
	if err != nil {
		return err
	}

	if text := strings.TrimSpace(c.QueryParam("query")); text != "" {
		list = tmdb.SearchList(list.Media, text)
	} else if raw := c.QueryParam("genre"); raw != "" {
		genreID, err := strconv.Atoi(raw)
		if err != nil || genreID <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "genre must be a positive integer")
		}
		list = tmdb.GenreList(list.Media, genreID)
	}

	q, err := s.meta.Queries().Build(list, page)
	if err != nil {
		return err
	}
	result, err := s.meta.Fetch(c.Request().Context(), q)
	if err != nil {
		return err
	}

	state := catalog.Snapshot(page-1, result)
	return c.JSON(http.StatusOK, newPageResponse(list.Name, state))
}

func (s *Server) movieDetails(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	movie, err := s.meta.GetMovie(ctx, id)
	if err != nil {
		return err
	}
	credits, err := s.meta.GetCredits(ctx, tmdb.MediaMovie, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movieResponse{
		MovieDetails: movie,
		PosterURL:    tmdb.PosterURL(movie.PosterPath, posterSize),
		Cast:         topCast(credits),
	})
}

func (s *Server) tvDetails(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	show, err := s.meta.GetTV(ctx, id)
	if err != nil {
		return err
	}
	credits, err := s.meta.GetCredits(ctx, tmdb.MediaTV, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tvResponse{
		TVDetails: show,
		PosterURL: tmdb.PosterURL(show.PosterPath, posterSize),
		Cast:      topCast(credits),
	})
}

func (s *Server) genres(c echo.Context) error {
	media := tmdb.MediaType(c.Param("media"))
	if media != tmdb.MediaMovie && media != tmdb.MediaTV {
		return echo.NewHTTPError(http.StatusNotFound, "media must be movie or tv")
	}
	genres, err := s.meta.Genres(c.Request().Context(), media)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, genres)
}

func newPageResponse(list string, s catalog.State) pageResponse {
	items := make([]itemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, itemResponse{Item: it, PosterURL: tmdb.PosterURL(it.PosterPath, posterSize)})
	}

	buttons := catalog.Pages(s.PageIndex, s.SelectablePages(), catalog.DefaultOptions())
	pagination := make([]buttonResponse, 0, len(buttons))
	for _, b := range buttons {
		pagination = append(pagination, buttonResponse{
			Kind:     buttonKinds[b.Kind],
			Label:    b.Label,
			Page:     b.Target + 1,
			Active:   b.Active,
			Disabled: b.Disabled,
		})
	}

	return pageResponse{
		List:         list,
		Status:       s.Status.String(),
		Page:         s.Page,
		PageCount:    s.PageCount,
		TotalResults: s.TotalResults,
		ItemOffset:   s.ItemOffset,
		Items:        items,
		Pagination:   pagination,
	}
}

func parsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "page must be a positive integer")
	}
	return page, nil
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return id, nil
}

func topCast(credits *tmdb.Credits) []tmdb.CastMember {
	if credits == nil {
		return []tmdb.CastMember{}
	}
	return credits.Cast[:min(len(credits.Cast), maxCast)]
}
