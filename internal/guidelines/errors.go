package guidelines

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/guidesync/internal/auth"
)

// Domain errors for guideline operations.
var (
	ErrNotFound       = errors.New("guideline not found")
	ErrDuplicate      = errors.New("guideline already exists")
	ErrValidation     = errors.New("validation failed")
	ErrInvalidFile    = errors.New("invalid file")
	ErrFileTooLarge   = errors.New("file exceeds maximum upload size")
	ErrStorageFailure = errors.New("failed to store file")
)

// MapHTTPStatus maps guideline and authorization errors to HTTP status codes.
// Unrecognized errors are backing-store failures and map to 500.
func MapHTTPStatus(err error) int {
	if status := auth.MapHTTPStatus(err); status != 0 {
		return status
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrStorageFailure) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
