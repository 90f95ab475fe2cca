package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vadimtrunov/moviedeck/internal/metadata/tmdb"
)

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusFor maps an error to the HTTP status and body returned to clients.
// Upstream failures keep their kind so callers can tell them apart.
func statusFor(err error) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var fe *tmdb.FetchError
	if errors.As(err, &fe) {
		switch {
		case fe.Kind == tmdb.KindNetwork:
			return http.StatusGatewayTimeout, errorResponse{Error: "tmdb is unreachable", Kind: string(fe.Kind)}
		case fe.Kind == tmdb.KindBadResponse && fe.StatusCode == http.StatusNotFound:
			return http.StatusNotFound, errorResponse{Error: "not found", Kind: string(fe.Kind)}
		default:
			return http.StatusBadGateway, errorResponse{Error: "tmdb returned an unusable response", Kind: string(fe.Kind)}
		}
	}

	if errors.Is(err, tmdb.ErrInvalidPage) {
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, body := statusFor(err)
		if code >= http.StatusInternalServerError {
			logger.Error("request error",
				slog.String("path", c.Path()),
				slog.Int("status", code),
				slog.String("error", err.Error()),
			)
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}
