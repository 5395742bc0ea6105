package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized covers 401/403 responses and a missing bearer credential.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrMalformed means the body did not have the expected shape, e.g. an
	// object where a collection was expected.
	ErrMalformed = errors.New("unexpected response shape")
)

// StatusError is a non-2xx response other than 401/403.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsUnauthorized reports whether err means the caller is not signed in.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
