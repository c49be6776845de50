package api

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/guerrillamail/client-go/internal/apierrors"
)

// LocalPart returns the part of address before the last '@'.
func LocalPart(address string) string {
	if i := strings.LastIndexByte(address, '@'); i >= 0 {
		return address[:i]
	}
	return address
}

// MatchesRequested reports whether the service honoured a username
// request. The assigned local part must start with the requested username,
// compared with Unicode case folding.
func MatchesRequested(requested, assigned string) bool {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(requested))
	got := fold.String(LocalPart(assigned))
	return want != "" && strings.HasPrefix(got, want)
}

// CheckAssignment returns an *apierrors.AssignmentMismatchError when
// assigned does not satisfy MatchesRequested.
func CheckAssignment(requested, assigned string) error {
	if MatchesRequested(requested, assigned) {
		return nil
	}
	return &apierrors.AssignmentMismatchError{Requested: requested, Assigned: assigned}
}
