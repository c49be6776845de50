// Package apierrors provides shared error types for the Guerrilla Mail client.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrTransport is returned when the service answers with a non-2xx status.
	ErrTransport = errors.New("transport failure")

	// ErrProtocol is returned when the response body is not a JSON document.
	ErrProtocol = errors.New("non-JSON response")

	// ErrDecode is returned when a JSON body does not match the expected shape.
	ErrDecode = errors.New("response decode failed")

	// ErrValidation is returned when an argument is rejected before any request is made.
	ErrValidation = errors.New("invalid argument")

	// ErrAssignmentMismatch is returned when the service assigned a different
	// address than the one requested and strict assignment is enabled.
	ErrAssignmentMismatch = errors.New("assigned address does not match requested username")

	// ErrRateLimited is returned when the service answers with 429.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidImportData is returned when an exported session cannot be restored.
	ErrInvalidImportData = errors.New("invalid import data")
)

// maxBodyInError bounds how much of a raw body is rendered by Error().
// The full body stays available on the error value.
const maxBodyInError = 256

func truncate(body string) string {
	if len(body) <= maxBodyInError {
		return body
	}
	return body[:maxBodyInError] + "..."
}

// HTTPError represents a non-2xx HTTP status from the service.
type HTTPError struct {
	Function   string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	status := e.Status
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	if e.Function != "" {
		return fmt.Sprintf("%s: HTTP %d %s", e.Function, e.StatusCode, status)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, status)
}

// Is implements errors.Is for sentinel error matching.
func (e *HTTPError) Is(target error) bool {
	if target == ErrTransport {
		return true
	}
	return e.StatusCode == http.StatusTooManyRequests && target == ErrRateLimited
}

// ProtocolError is returned when the body does not start with '{' or '['.
// Body carries the raw payload; the service uses HTML or plain text for
// maintenance pages, rate limiting and malformed input alike.
type ProtocolError struct {
	Function string
	Body     string
}

func (e *ProtocolError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: service returned an empty non-JSON response", e.Function)
	}
	return fmt.Sprintf("%s: service returned non-JSON response: %s", e.Function, truncate(e.Body))
}

// Is implements errors.Is for sentinel error matching.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// DecodeError is returned when a JSON body cannot be decoded into the
// operation's result type.
type DecodeError struct {
	Function string
	Body     string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Function, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// ValidationError is returned for caller arguments rejected before any
// network activity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is implements errors.Is for sentinel error matching.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AssignmentMismatchError names both the requested username and the
// address the service actually assigned.
type AssignmentMismatchError struct {
	Requested string
	Assigned  string
}

func (e *AssignmentMismatchError) Error() string {
	return fmt.Sprintf("requested username %q but service assigned %q", e.Requested, e.Assigned)
}

// Is implements errors.Is for sentinel error matching.
func (e *AssignmentMismatchError) Is(target error) bool {
	return target == ErrAssignmentMismatch
}

// NetworkError represents a network-level failure, including context
// cancellation and deadline expiry.
type NetworkError struct {
	Function string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// GuerrillaMailError marks the error types of this module.
func (e *HTTPError) GuerrillaMailError() {}
func (e *ProtocolError) GuerrillaMailError() {}
func (e *DecodeError) GuerrillaMailError() {}
func (e *ValidationError) GuerrillaMailError() {}
func (e *AssignmentMismatchError) GuerrillaMailError() {}
func (e *NetworkError) GuerrillaMailError() {}
