package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalid       = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotConfigured = errors.New("not configured")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUnsupported   = errors.New("unsupported address format")
	ErrContextDone   = errors.New("context cancelled")
)

// UpstreamError normalizes a failure from an external API: a non-2xx HTTP
// response, or an error code embedded in an HTTP 200 body. It is raised
// inside platform clients and recovered at the provider boundary, never
// allowed to crash an aggregation pass.
type UpstreamError struct {
	Service string // originating service name, e.g. "lighter"
	Status  int    // HTTP status, 0 for embedded errors
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

// NewUpstreamError builds an UpstreamError for the given service.
func NewUpstreamError(service string, status int, message string) *UpstreamError {
	return &UpstreamError{Service: service, Status: status, Message: message}
}
