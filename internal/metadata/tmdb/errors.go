package tmdb

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed fetch.
type ErrorKind string

const (
	// KindNetwork means the request could not complete.
	KindNetwork ErrorKind = "network"
	// KindBadResponse means TMDb answered with a non-2xx status.
	KindBadResponse ErrorKind = "bad_response"
	// KindParse means the body was not valid JSON or lacked expected fields.
	KindParse ErrorKind = "parse"
)

// Sentinels matched by errors.Is against a *FetchError of the same kind.
var (
	ErrNetwork     = errors.New("tmdb network failure")
	ErrBadResponse = errors.New("tmdb bad response")
	ErrParse       = errors.New("tmdb parse failure")
)

// FetchError describes a failed TMDb request.
type FetchError struct {
	Kind       ErrorKind
	Endpoint   string // path only, never the full URL (it carries the API key)
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("tmdb %s error on %s (status %d): %s", e.Kind, e.Endpoint, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("tmdb %s error on %s (status %d)", e.Kind, e.Endpoint, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("tmdb %s error on %s: %v", e.Kind, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("tmdb %s error on %s", e.Kind, e.Endpoint)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *FetchError) Is(target error) bool {
	switch e.Kind {
	case KindNetwork:
		return target == ErrNetwork
	case KindBadResponse:
		return target == ErrBadResponse
	case KindParse:
		return target == ErrParse
	}
	return false
}

// KindOf returns the kind of a fetch error, or "" if err is not one.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
