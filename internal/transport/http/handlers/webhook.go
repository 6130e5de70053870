package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/application/reset"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/response"
)

type WebhookService interface {
	HandleWebhook(ctx context.Context, deliveryID string, evt domain.WebhookEvent) reset.WebhookOutcome
}

type WebhookHandler struct {
	svc WebhookService
}

func NewWebhookHandler(svc WebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// PasswordReset acknowledges provider callbacks. Only a body that is not a
// JSON object is refused; fields of an unexpected type are read leniently.
func (h *WebhookHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	err := response.DecodeJSON(r, &payload)
	if err == nil && payload == nil {
		err = domain.ErrInvalidJSON(errors.New("payload is not an object"))
	}
	if err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("malformed webhook payload")
		middleware.WebhookEventsTotal.WithLabelValues("unknown", "malformed").Inc()
		response.Status(w, http.StatusBadRequest, "error")
		return
	}
	evt := domain.WebhookEventFromPayload(payload)

	outcome := h.svc.HandleWebhook(r.Context(), r.Header.Get(middleware.HeaderWebhookID), evt)
	middleware.WebhookEventsTotal.WithLabelValues(eventLabel(evt.Type), string(outcome)).Inc()

	response.Status(w, http.StatusOK, "success")
}

// eventLabel keeps metric cardinality bounded.
func eventLabel(t string) string {
	if t == domain.EventPasswordResetConfirmed {
		return t
	}
	return "other"
}
