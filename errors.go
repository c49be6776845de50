package guerrillamail

import "github.com/guerrillamail/client-go/internal/apierrors"

// Sentinel errors for errors.Is() checks
var (
	// ErrTransport is matched by any non-2xx HTTP response.
	ErrTransport = apierrors.ErrTransport

	// ErrProtocol is matched when the service answers with a body that is
	// not a JSON document.
	ErrProtocol = apierrors.ErrProtocol

	// ErrDecode is matched when a JSON body does not fit the expected shape.
	ErrDecode = apierrors.ErrDecode

	// ErrValidation is matched when an argument is rejected before any
	// request is sent.
	ErrValidation = apierrors.ErrValidation

	// ErrAssignmentMismatch is matched when strict assignment is on and the
	// service assigned a different username.
	ErrAssignmentMismatch = apierrors.ErrAssignmentMismatch

	// ErrRateLimited is matched by HTTP 429 responses.
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrInvalidImportData is returned when an exported session is invalid.
	ErrInvalidImportData = apierrors.ErrInvalidImportData
)

// GuerrillaMailError is implemented by all errors this package defines.
type GuerrillaMailError interface {
	error
	GuerrillaMailError() // marker method
}

// HTTPError is a non-2xx response.
type HTTPError = apierrors.HTTPError

// ProtocolError is a 2xx response whose body is not JSON. Body holds the
// raw response.
type ProtocolError = apierrors.ProtocolError

// DecodeError is a JSON response that could not be decoded.
type DecodeError = apierrors.DecodeError

// ValidationError is an argument rejected before the network.
type ValidationError = apierrors.ValidationError

// AssignmentMismatchError names both the requested username and the
// address the service assigned instead.
type AssignmentMismatchError = apierrors.AssignmentMismatchError

// NetworkError is a failure to complete the request or read its body,
// including context cancellation.
type NetworkError = apierrors.NetworkError
