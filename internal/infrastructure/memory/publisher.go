package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/application/reset"
)

// NoopPublisher logs events instead of sending them to a broker.
type NoopPublisher struct {
	lg zerolog.Logger
}

func NewNoopPublisher(lg zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{lg: lg.With().Str("component", "noop_publisher").Logger()}
}

func (p *NoopPublisher) PublishResetConfirmed(ctx context.Context, evt reset.ResetConfirmedEvent) error {
	p.lg.Info().
		Str("user_id", evt.UserID).
		Str("delivery_id", evt.DeliveryID).
		Time("occurred_at", evt.OccurredAt).
		Msg("[noop-pub] password reset confirmed")
	return nil
}
