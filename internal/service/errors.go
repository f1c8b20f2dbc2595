// Package service provides business logic for the widget backend.
package service

import "fmt"

// ErrorCode classifies service failures for HTTP mapping.
type ErrorCode string

const (
	ErrorInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrorNotFound            ErrorCode = "NOT_FOUND"
	ErrorUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrorUpstreamRateLimited ErrorCode = "UPSTREAM_RATE_LIMITED"
	ErrorUpstream            ErrorCode = "UPSTREAM_ERROR"
	ErrorScrapeEmpty         ErrorCode = "SCRAPE_EMPTY"
	ErrorScrape              ErrorCode = "SCRAPE_ERROR"
	ErrorInternal            ErrorCode = "INTERNAL_ERROR"
)

// Error is a coded service error.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("service: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("service: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
