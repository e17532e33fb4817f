package errors

import (
	"errors"
	"fmt"
	"net/http"

	"arrivatui/internal/model"
)

// TransportError represents a failed call to the remote service.
type TransportError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether re-issuing the same request may succeed.
func (e *TransportError) Retryable() bool {
	if e.StatusCode == 0 {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NewTransportError creates a new TransportError
func NewTransportError(op string, statusCode int, message string, err error) *TransportError {
	return &TransportError{
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// MissingSectionError is returned when a required array is absent from a trip response.
type MissingSectionError struct {
	Section string
	Key     string
}

func (e *MissingSectionError) Error() string {
	return fmt.Sprintf("trip response is missing the %s section (key %q)", e.Section, e.Key)
}

// SideParseError is returned when some records of exactly one side failed to parse.
type SideParseError struct {
	Side  model.Side
	Count int
}

func (e *SideParseError) Error() string {
	return fmt.Sprintf("failed to parse %d %s trip(s)", e.Count, e.Side)
}

// ErrBothSides is returned when records on both sides failed to parse.
var ErrBothSides = errors.New("failed to parse trips on both sides")

// Kind names the class of an error for logs and metrics labels.
func Kind(err error) string {
	var transportErr *TransportError
	var missingErr *MissingSectionError
	var sideErr *SideParseError

	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &missingErr):
		return "missing_section"
	case errors.As(err, &sideErr):
		return "side_parse"
	case errors.Is(err, ErrBothSides):
		return "both_sides_parse"
	default:
		return "other"
	}
}
