package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/tracing"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type ResetHandler interface {
	// Reset form
	Show(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)

	// New link
	RequestLinkForm(w http.ResponseWriter, r *http.Request)
	RequestLink(w http.ResponseWriter, r *http.Request)
}

type WebhookHandler interface {
	PasswordReset(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health  HealthHandler
	Reset   ResetHandler
	Webhook WebhookHandler

	Static  http.Handler // embedded stylesheet
	Metrics http.Handler // prometheus exposition

	CSRFMW    func(http.Handler) http.Handler
	FormRLMW  func(http.Handler) http.Handler // POST form submissions
	WebhookMW func(http.Handler) http.Handler // signature verification
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Reset == nil {
		return nil, fmt.Errorf("nil Reset handler")
	}
	if deps.Webhook == nil {
		return nil, fmt.Errorf("nil Webhook handler")
	}
	if deps.CSRFMW == nil {
		return nil, fmt.Errorf("nil CSRF middleware")
	}
	if deps.FormRLMW == nil {
		deps.FormRLMW = passthrough
	}
	if deps.WebhookMW == nil {
		deps.WebhookMW = passthrough
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(tracing.ServiceName))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.Static != nil {
		r.Method(http.MethodGet, "/static/*", deps.Static)
	}

	// --- HTML forms ---
	r.Group(func(r chi.Router) {
		r.Use(deps.CSRFMW)

		r.Get("/reset_password/", deps.Reset.Show)
		r.With(deps.FormRLMW).Post("/reset_password/", deps.Reset.Submit)

		r.Get("/reset_password/request/", deps.Reset.RequestLinkForm)
		r.With(deps.FormRLMW).Post("/reset_password/request/", deps.Reset.RequestLink)
	})

	// --- Provider callbacks (no session, no CSRF) ---
	r.With(deps.WebhookMW).Post("/webhook/password-reset/", deps.Webhook.PasswordReset)

	return r, nil
}

func passthrough(next http.Handler) http.Handler { return next }
