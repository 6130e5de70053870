package domain

import "strings"

// MinPasswordLength is checked locally before any provider call.
const MinPasswordLength = 8

// TokenType is the provider's hint about which reset flow issued a token.
type TokenType string

const (
	// TokenTypeOrganization marks organization-scoped (multi-tenant) reset links.
	TokenTypeOrganization TokenType = "multi_tenant_passwords"
	// TokenTypeIndividual marks individual-account reset links.
	TokenTypeIndividual TokenType = "passwords"
)

// ParseTokenType keeps unknown values verbatim so they survive a re-render.
func ParseTokenType(s string) TokenType {
	return TokenType(strings.TrimSpace(s))
}

func (t TokenType) IsOrganization() bool { return t == TokenTypeOrganization }

func (t TokenType) String() string { return string(t) }

// ResetRequest lives for one HTTP request and is never persisted.
type ResetRequest struct {
	Token           string
	TokenType       TokenType
	NewPassword     string
	ConfirmPassword string
}

// ResetOutcome is what the provider returns on a successful reset.
type ResetOutcome struct {
	MemberID       string
	OrganizationID string
	SessionToken   string
	SessionJWT     string
}

// StrengthResult is the provider's verdict on a candidate password.
type StrengthResult struct {
	Valid    bool
	Score    int
	Breached bool
	Feedback string
}

// FailureCategory classifies a failed provider reset.
type FailureCategory string

const (
	FailureExpired      FailureCategory = "expired"
	FailureInvalid      FailureCategory = "invalid"
	FailureAlreadyUsed  FailureCategory = "already_used"
	FailureWeakPassword FailureCategory = "weak_password"
	FailureUnknown      FailureCategory = "unknown"
)

func ParseFailureCategory(s string) FailureCategory {
	switch c := FailureCategory(s); c {
	case FailureExpired, FailureInvalid, FailureAlreadyUsed, FailureWeakPassword:
		return c
	default:
		return FailureUnknown
	}
}

// Message is the user-facing text for the category.
func (c FailureCategory) Message() string {
	switch c {
	case FailureExpired:
		return "This password reset link has expired. Please request a new one."
	case FailureInvalid:
		return "This password reset link is invalid. Please request a new one."
	case FailureAlreadyUsed:
		return "This password reset link has already been used. Please request a new one."
	case FailureWeakPassword:
		return "Password is too weak. Please choose a stronger password."
	default:
		return "Failed to reset password. The reset link may be expired or invalid."
	}
}

// NeedsNewLink reports whether retrying with the same token cannot succeed.
func (c FailureCategory) NeedsNewLink() bool {
	return c == FailureExpired || c == FailureInvalid || c == FailureAlreadyUsed
}

// MaskToken returns a log-safe prefix of a reset token.
func MaskToken(token string) string {
	const keep = 10
	if token == "" {
		return ""
	}
	r := []rune(token)
	if len(r) <= keep {
		return string(r[:len(r)/2]) + "..."
	}
	return string(r[:keep]) + "..."
}
