package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrDenied is returned by copy and move when the remote system refuses the
// operation with a permission error the caller declared it can tolerate.
var ErrDenied = errors.New("permission denied")

// APIError is a classified failure of a remote call
type APIError struct {
	Op     string
	Status int
	Err    error
}

func (e *APIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is a server-side status worth retrying
func (e *APIError) Transient() bool {
	return e.Status == http.StatusInternalServerError || e.Status == http.StatusServiceUnavailable
}

// Denied reports whether the failure is a permission error
func (e *APIError) Denied() bool {
	return e.Status == http.StatusForbidden
}

// RetriesExhaustedError is returned when a transient failure persists
// through every allowed attempt
type RetriesExhaustedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s failed %d times, giving up: %v", e.Op, e.Attempts, e.Err)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}

// StructuralError reports a precondition violation detected before any mutation
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return e.Reason
}

// NewStructuralError formats a StructuralError
func NewStructuralError(format string, args ...interface{}) error {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}

// IsStructural reports whether err is a StructuralError
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// AsAPIError extracts an APIError from err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
