package middleware

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/response"
)

// Stytch delivers webhooks through Svix; these are its signing headers.
const (
	HeaderWebhookID        = "svix-id"
	HeaderWebhookTimestamp = "svix-timestamp"
	HeaderWebhookSignature = "svix-signature"

	secretPrefix = "whsec_"
)

// WebhookVerifier checks Svix-style HMAC-SHA256 webhook signatures.
type WebhookVerifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewWebhookVerifier(secret string, tolerance time.Duration) (*WebhookVerifier, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(secret), secretPrefix)
	if raw == "" {
		return nil, errors.New("webhook secret is empty")
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("webhook secret is not valid base64: %w", err)
	}
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &WebhookVerifier{key: key, tolerance: tolerance, now: time.Now}, nil
}

// Sign returns the signature header value for a payload. Used by tests and tooling.
func (v *WebhookVerifier) Sign(id string, ts time.Time, body []byte) string {
	return "v1," + v.sign(id, strconv.FormatInt(ts.Unix(), 10), body)
}

func (v *WebhookVerifier) sign(id, ts string, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(id))
	mac.Write([]byte{'.'})
	mac.Write([]byte(ts))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify returns a domain unauthorized error describing the first failed check.
func (v *WebhookVerifier) Verify(h http.Header, body []byte) error {
	id := h.Get(HeaderWebhookID)
	ts := h.Get(HeaderWebhookTimestamp)
	sigs := h.Get(HeaderWebhookSignature)
	if id == "" || ts == "" || sigs == "" {
		return domain.ErrWebhookSignature("missing_headers")
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return domain.ErrWebhookSignature("invalid_timestamp")
	}
	skew := v.now().Sub(time.Unix(sec, 0))
	if skew > v.tolerance || skew < -v.tolerance {
		return domain.ErrWebhookSignature("stale_timestamp")
	}

	expected := []byte(v.sign(id, ts, body))
	for _, candidate := range strings.Fields(sigs) {
		version, sig, ok := strings.Cut(candidate, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), expected) {
			return nil
		}
	}
	return domain.ErrWebhookSignature("no_matching_signature")
}

// WebhookRejectFunc observes rejected deliveries (audit, metrics).
type WebhookRejectFunc func(ctx context.Context, deliveryID, reason string)

// VerifyWebhook rejects unsigned or mis-signed deliveries with 401 {"status":"error"}.
// A nil verifier disables the check.
func VerifyWebhook(v *WebhookVerifier, onReject WebhookRejectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, response.MaxBodyBytes+1))
			if err != nil || len(body) > response.MaxBodyBytes {
				response.Status(w, http.StatusBadRequest, "error")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if err := v.Verify(r.Header, body); err != nil {
				reason := "invalid_signature"
				if de, ok := domain.As(err); ok && de.Meta != nil {
					reason = de.Meta["reason"]
				}
				deliveryID := r.Header.Get(HeaderWebhookID)
				logger.Ctx(r.Context()).Warn().
					Str("reason", reason).
					Str("delivery_id", deliveryID).
					Msg("webhook signature rejected")
				WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
				if onReject != nil {
					onReject(r.Context(), deliveryID, reason)
				}
				response.Status(w, http.StatusUnauthorized, "error")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
