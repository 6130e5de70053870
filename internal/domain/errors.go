package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation    ErrKind = "validation"    // 400
	KindProvider      ErrKind = "provider"      // 400
	KindUnauthorized  ErrKind = "unauthorized"  // 401
	KindForbidden     ErrKind = "forbidden"     // 403
	KindRateLimited   ErrKind = "rate_limited"  // 429
	KindConfiguration ErrKind = "configuration" // 503
	KindInternal      ErrKind = "internal"      // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for end users (never provider or credential details)
// - Meta: optional details (field, category, etc.)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// As returns the *Error inside err, if any.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrMissingToken() *Error {
	return New(KindValidation, "missing_token", "Invalid or missing reset token. Please request a new password reset.")
}

func ErrPasswordMismatch() *Error {
	return New(KindValidation, "password_mismatch", "Passwords do not match. Please try again.")
}

func ErrPasswordTooShort(min int) *Error {
	return WithMeta(
		New(KindValidation, "password_too_short", fmt.Sprintf("Password must be at least %d characters long.", min)),
		map[string]string{"min": fmt.Sprint(min)},
	)
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "Please check the highlighted field and try again."), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

// ----------------------
// Provider errors (400)
// ----------------------

// ErrResetFailed wraps a classified provider failure. The message is chosen by category.
func ErrResetFailed(category FailureCategory, cause error) *Error {
	return WithMeta(
		Wrap(KindProvider, "reset_failed", category.Message(), cause),
		map[string]string{"category": string(category)},
	)
}

// CategoryOf extracts the failure category from a provider error; unknown otherwise.
func CategoryOf(err error) FailureCategory {
	de, ok := As(err)
	if !ok || de.Kind != KindProvider || de.Meta == nil {
		return FailureUnknown
	}
	return ParseFailureCategory(de.Meta["category"])
}

// ----------------------
// Unauthorized (401)
// ----------------------

func ErrWebhookSignature(reason string) *Error {
	return WithMeta(New(KindUnauthorized, "invalid_signature", "invalid webhook signature"), map[string]string{
		"reason": reason,
	})
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrCSRF(reason string) *Error {
	return WithMeta(New(KindForbidden, "csrf_failed", "Your form has expired. Please reload the page and try again."), map[string]string{
		"reason": reason,
	})
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "Too many attempts. Please wait a moment and try again."), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Configuration / internal (5xx)
// ----------------------

// ErrConfiguration never carries the name of the missing credential in its message.
func ErrConfiguration(cause error) *Error {
	return Wrap(KindConfiguration, "provider_not_configured", "Configuration error. Please contact support.", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "Something went wrong. Please try again later.", cause)
}
