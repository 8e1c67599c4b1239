package catalog

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for matching with errors.Is.
var (
	ErrNetwork  = errors.New("catalog network error")
	ErrParse    = errors.New("catalog parse error")
	ErrNotFound = errors.New("pokemon not found")
)

// NetworkError reports a transport failure or a non-2xx status from the catalog.
// A 404 status also matches ErrNotFound.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("GET %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is lets callers match on ErrNetwork and, for 404 responses, ErrNotFound.
func (e *NetworkError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return true
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// ParseError reports a payload that could not be decoded into its schema.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
