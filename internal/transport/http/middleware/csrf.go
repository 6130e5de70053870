package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
)

type CSRFConfig struct {
	Key            []byte
	Secure         bool // cookie Secure flag; true in prod
	TrustedOrigins []string
}

// CSRF protects the HTML form routes with gorilla/csrf.
// Requests that did not arrive over TLS (directly or via a proxy) are marked
// plaintext so the Referer check matches the scheme actually in use.
func CSRF(cfg CSRFConfig, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		cfg.Key,
		csrf.Secure(cfg.Secure),
		csrf.HttpOnly(true),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(cfg.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := "unknown"
			if err := csrf.FailureReason(r); err != nil {
				reason = err.Error()
			}
			logger.Ctx(r.Context()).Warn().Str("reason", reason).Str("path", r.URL.Path).Msg("csrf check failed")
			writeErr(w, r, domain.ErrCSRF(reason))
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isTLS(r) {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func isTLS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
