package reset

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

/*
Provider
--------
The identity provider's password operations.
Token cryptography and strength scoring stay on the provider side.
*/
type Provider interface {
	StrengthCheck(ctx context.Context, password string) (domain.StrengthResult, error)
	ResetByEmail(ctx context.Context, token, password string) (domain.ResetOutcome, error)
	ResetStart(ctx context.Context, organizationID, email, redirectURL string, expiry time.Duration) error
}

/*
ProviderSource
--------------
Hands out the shared provider handle, or a configuration error when
credentials are missing.
*/
type ProviderSource interface {
	Provider() (Provider, error)
}

// ProviderFunc adapts a function to ProviderSource.
type ProviderFunc func() (Provider, error)

func (f ProviderFunc) Provider() (Provider, error) { return f() }

// Classifier maps a provider error to a failure category.
type Classifier func(err error) domain.FailureCategory

/*
EventPublisher
--------------
Publishes reset events to RabbitMQ.
*/
type EventPublisher interface {
	PublishResetConfirmed(ctx context.Context, evt ResetConfirmedEvent) error
}

type ResetConfirmedEvent struct {
	UserID     string    `json:"user_id"`
	DeliveryID string    `json:"delivery_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

/*
WebhookDeduper
--------------
Remembers webhook delivery ids so retries are acknowledged only once.
Backed by Redis or memory.
*/
type WebhookDeduper interface {
	// MarkIfNew returns true the first time id is seen within ttl.
	MarkIfNew(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

/*
Auditor
-------
Audit trail for reset events. Implemented by internal/audit.
*/
type Auditor interface {
	ResetSucceeded(ctx context.Context, token, memberID, organizationID string)
	ResetFailed(ctx context.Context, token string, category domain.FailureCategory)
	ResetLinkRequested(ctx context.Context, organizationID, email string)
	ResetConfirmed(ctx context.Context, userID, deliveryID string)
}
