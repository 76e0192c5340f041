package auth

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated indicates a gated operation was attempted without a valid credential.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden indicates a valid identity lacks the role an operation requires.
	ErrForbidden = errors.New("insufficient permissions")
	// ErrInvalidToken indicates a credential was malformed, expired, or failed signature checks.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Authorize reports whether caller satisfies the required class.
// Callers without a verified identity receive ErrUnauthenticated (wrapping the
// verification failure, if any); verified callers below the required class
// receive ErrForbidden.
func Authorize(required Class, caller Caller) error {
	if caller.Class() >= required {
		return nil
	}

	if caller.Identity == nil {
		if caller.Err != nil {
			return fmt.Errorf("%w: %w", ErrUnauthenticated, caller.Err)
		}
		return ErrUnauthenticated
	}

	return ErrForbidden
}

// MapHTTPStatus maps authentication and authorization errors to HTTP status codes.
// Returns 0 for errors outside this package.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	}
	return 0
}
