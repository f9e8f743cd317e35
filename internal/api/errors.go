package api

import (
	"fmt"
	"net/http"
)

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// NotFound reports whether the backend did not know the addressed resource.
func (e *HTTPError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// APIError is an application-level failure: a 2xx answer with success=false.
type APIError struct {
	Op      string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Op + ": backend reported failure"
	}
	return e.Op + ": " + e.Message
}
