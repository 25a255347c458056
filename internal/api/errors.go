// Package api is the authenticated HTTP client for the course platform.
package api

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthentication indicates the session is missing, expired, or was
	// rejected by the platform.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimited indicates the platform rejected the request with 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrConnection indicates the platform could not be reached.
	ErrConnection = errors.New("connection failed")
)

// StatusError is an unexpected HTTP status from the platform.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
