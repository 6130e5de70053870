package stytch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

var (
	ErrTimeout     = errors.New("stytch_timeout")
	ErrUnavailable = errors.New("stytch_unavailable")
)

// APIError is the JSON error body returned by the Stytch API.
type APIError struct {
	StatusCode   int    `json:"status_code"`
	RequestID    string `json:"request_id"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	ErrorURL     string `json:"error_url"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stytch error [%d] %s: %s (request_id=%s)", e.StatusCode, e.ErrorType, e.ErrorMessage, e.RequestID)
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorType != "" {
		if apiErr.StatusCode == 0 {
			apiErr.StatusCode = resp.StatusCode
		}
		return &apiErr
	}
	return &APIError{
		StatusCode:   resp.StatusCode,
		ErrorType:    "unexpected_response",
		ErrorMessage: fmt.Sprintf("unexpected status: %d", resp.StatusCode),
	}
}

func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// knownErrorTypes maps documented Stytch error_type values to a category.
var knownErrorTypes = map[string]domain.FailureCategory{
	"weak_password":                       domain.FailureWeakPassword,
	"breached_password":                   domain.FailureWeakPassword,
	"invalid_password":                    domain.FailureWeakPassword,
	"password_does_not_meet_requirements": domain.FailureWeakPassword,
	"reset_password_token_expired":        domain.FailureExpired,
	"password_reset_token_expired":        domain.FailureExpired,
	"unable_to_auth_magic_link":           domain.FailureInvalid,
	"password_reset_token_not_found":      domain.FailureInvalid,
	"invalid_token":                       domain.FailureInvalid,
	"reset_password_token_already_used":   domain.FailureAlreadyUsed,
	"password_reset_token_already_used":   domain.FailureAlreadyUsed,
	"password_reset_token_used":           domain.FailureAlreadyUsed,
}

// Classify maps any error from a reset call to a failure category.
// "expired" anywhere in the error detail always wins; then the known
// error_type table; then substrings of the joined detail.
func Classify(err error) domain.FailureCategory {
	if err == nil {
		return domain.FailureUnknown
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return domain.FailureUnknown
	}

	et := strings.ToLower(strings.TrimSpace(apiErr.ErrorType))
	detail := strings.TrimSpace(et + " " + strings.ToLower(apiErr.ErrorMessage))
	if strings.Contains(detail, "expired") {
		return domain.FailureExpired
	}
	if c, ok := knownErrorTypes[et]; ok {
		return c
	}
	if c, ok := classifyText(detail); ok {
		return c
	}
	return domain.FailureUnknown
}

func classifyText(s string) (domain.FailureCategory, bool) {
	switch {
	case s == "":
		return "", false
	case strings.Contains(s, "expired"):
		return domain.FailureExpired, true
	case strings.Contains(s, "invalid"), strings.Contains(s, "not_found"), strings.Contains(s, "not found"):
		return domain.FailureInvalid, true
	case strings.Contains(s, "used"):
		return domain.FailureAlreadyUsed, true
	}
	return "", false
}
