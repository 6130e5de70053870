package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/response"
)

// ReadinessCheck returns nil when a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]ReadinessCheck
}

func NewHealthHandler(checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.Status(w, http.StatusOK, "ok")
}

// Readyz fails when any registered check fails. The check name is reported, never the error text.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("check", name).Msg("readiness check failed")
			response.WriteJSON(w, http.StatusServiceUnavailable, response.StatusBody{
				Status: "unavailable",
				Error:  name,
			})
			return
		}
	}
	response.Status(w, http.StatusOK, "ready")
}
