package backend

import (
	"errors"
	"fmt"
)

// ErrNotFound matches a 404 from the API
var ErrNotFound = errors.New("not found")

// StatusError is a 4xx answer from a reachable API
type StatusError struct {
	Endpoint   string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api %s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api %s: unexpected status %d", e.Endpoint, e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404s
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
