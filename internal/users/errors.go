package users

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/guidesync/internal/auth"
)

// Domain errors for user operations.
var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRequest     = errors.New("email and password are required")
	ErrLoginUnavailable   = errors.New("password login is not available with the configured identity provider")
)

// MapHTTPStatus maps user and authorization errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if status := auth.MapHTTPStatus(err); status != 0 {
		return status
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrLoginUnavailable) {
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
