package response

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

// StatusFromKind maps domain error kinds to HTTP status codes.
func StatusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation, domain.KindProvider:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindConfiguration:
		return http.StatusServiceUnavailable
	case domain.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// StatusOf returns the HTTP status for any error.
func StatusOf(err error) int {
	if de, ok := domain.As(err); ok {
		return StatusFromKind(de.Kind)
	}
	return http.StatusInternalServerError
}
