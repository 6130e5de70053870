package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/reset-service/internal/pkg/context"
)

// Logger provides structured audit logging for password reset events
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// ResetSucceeded logs a completed password reset
func (l *Logger) ResetSucceeded(ctx context.Context, token, memberID, organizationID string) {
	l.log.Info().
		Str("action", "password_reset_succeeded").
		Str("token_prefix", domain.MaskToken(token)).
		Str("member_id", memberID).
		Str("organization_id", organizationID).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Password reset completed")
}

// ResetFailed logs a reset rejected by the provider
func (l *Logger) ResetFailed(ctx context.Context, token string, category domain.FailureCategory) {
	l.log.Warn().
		Str("action", "password_reset_failed").
		Str("token_prefix", domain.MaskToken(token)).
		Str("category", string(category)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Password reset failed")
}

// ResetLinkRequested logs a request for a new reset link
func (l *Logger) ResetLinkRequested(ctx context.Context, organizationID, email string) {
	l.log.Info().
		Str("action", "password_reset_link_requested").
		Str("organization_id", organizationID).
		Str("email", maskEmail(email)).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Password reset link requested")
}

// ResetConfirmed logs the provider's reset confirmation webhook
func (l *Logger) ResetConfirmed(ctx context.Context, userID, deliveryID string) {
	l.log.Info().
		Str("action", "password_reset_confirmed").
		Str("user_id", userID).
		Str("delivery_id", deliveryID).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Password reset confirmed by provider")
}

// WebhookRejected logs a webhook delivery that failed signature verification
func (l *Logger) WebhookRejected(ctx context.Context, deliveryID, reason string) {
	l.log.Warn().
		Str("action", "webhook_rejected").
		Str("delivery_id", deliveryID).
		Str("reason", reason).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Webhook signature rejected")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	// Show first 2 chars and domain
	at := 0
	for i, c := range email {
		if c == '@' {
			at = i
			break
		}
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
