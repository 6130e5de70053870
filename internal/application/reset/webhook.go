package reset

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
)

// WebhookOutcome tells the transport what happened to a delivery.
type WebhookOutcome string

const (
	WebhookProcessed WebhookOutcome = "processed"
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookDuplicate WebhookOutcome = "duplicate"
)

// HandleWebhook runs the side effects for a provider event. Errors in
// side effects are logged and never change the acknowledgement.
func (s *Service) HandleWebhook(ctx context.Context, deliveryID string, evt domain.WebhookEvent) WebhookOutcome {
	lg := logger.Ctx(ctx).With().
		Str("event_type", evt.Type).
		Str("delivery_id", deliveryID).
		Logger()

	lg.Info().Msg("webhook received")

	if deliveryID != "" && s.dedupe != nil {
		first, err := s.dedupe.MarkIfNew(ctx, deliveryID, s.dedupeTTL)
		switch {
		case err != nil:
			lg.Warn().Err(err).Msg("webhook dedupe unavailable, processing anyway")
		case !first:
			lg.Info().Msg("duplicate webhook delivery acknowledged")
			return WebhookDuplicate
		}
	}

	if evt.Type != domain.EventPasswordResetConfirmed {
		lg.Debug().Msg("webhook event type not handled")
		return WebhookIgnored
	}

	userID := evt.Subject()
	lg.Info().Str("user_id", userID).Msg("password reset confirmed")
	s.audit.ResetConfirmed(ctx, userID, deliveryID)

	if s.pub != nil {
		err := s.pub.PublishResetConfirmed(ctx, ResetConfirmedEvent{
			UserID:     userID,
			DeliveryID: deliveryID,
			OccurredAt: s.now().UTC(),
		})
		if err != nil {
			lg.Error().Err(err).Msg("publish reset confirmed failed")
		}
	}
	return WebhookProcessed
}
