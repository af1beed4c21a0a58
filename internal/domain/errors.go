package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals caller input that fails validation
	// (e.g. a result window larger than the platform allows).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUpstream signals a failure reported by an external service.
	ErrUpstream = errors.New("upstream failure")
)

// UpstreamError wraps ErrUpstream with the status and error payload
// returned by the search backend or the commerce platform.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %s returned status %d", ErrUpstream.Error(), e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s returned status %d: %s", ErrUpstream.Error(), e.Service, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NewUpstreamError creates an upstream failure carrying the service name,
// HTTP status and raw error payload.
func NewUpstreamError(service string, statusCode int, body string) error {
	return &UpstreamError{Service: service, StatusCode: statusCode, Body: body}
}
