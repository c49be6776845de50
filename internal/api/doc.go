// Package api implements the Guerrilla Mail AJAX protocol.
//
// Every operation is a GET against a single endpoint, with the function
// name in the "f" query parameter and the caller identity in "ip" and
// "agent". The mailbox is bound to the session cookie the service issues on
// the first call, so a [Client] must keep reusing the same [session.Store].
//
// # Responses
//
// A body is accepted as JSON only when, after trimming whitespace, it starts
// with '{' or '['. Any other 2xx body is reported as an
// [apierrors.ProtocolError] carrying the raw body; non-2xx statuses are
// reported as [apierrors.HTTPError] before the body is inspected. Integer
// fields are decoded with [Int64], which accepts both numbers and numeric
// strings.
//
// # Thread Safety
//
// A [Client] is safe for concurrent use, but concurrent calls share one
// session and their cookie updates are applied in completion order.
package api
