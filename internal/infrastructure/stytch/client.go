package stytch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/reset-service/internal/pkg/context"
)

const (
	TestBaseURL = "https://test.stytch.com"
	LiveBaseURL = "https://api.stytch.com"

	DefaultTimeout = 10 * time.Second
)

// Settings configures a Client. Env is "test" or "live".
type Settings struct {
	ProjectID string
	Secret    string
	Env       string
	BaseURL   string
	Timeout   time.Duration
}

// BaseURLFor returns the API host for a tier; anything but "live" uses the test host.
func BaseURLFor(env string) string {
	if strings.EqualFold(env, "live") {
		return LiveBaseURL
	}
	return TestBaseURL
}

// Client talks to the Stytch B2B passwords API.
type Client struct {
	baseURL   string
	projectID string
	secret    string
	hc        *http.Client
	lg        zerolog.Logger
}

func NewClient(s Settings, lg zerolog.Logger) *Client {
	base := s.BaseURL
	if base == "" {
		base = BaseURLFor(s.Env)
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(base, "/"),
		projectID: s.ProjectID,
		secret:    s.Secret,
		hc: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "stytch " + r.URL.Path
				}),
			),
		},
		lg:        lg.With().Str("component", "stytch_client").Logger(),
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

type strengthCheckRequest struct {
	Password string `json:"password"`
}

type strengthCheckResponse struct {
	ValidPassword    bool `json:"valid_password"`
	Score            int  `json:"score"`
	BreachedPassword bool `json:"breached_password"`
	ZxcvbnFeedback   struct {
		Warning     string   `json:"warning"`
		Suggestions []string `json:"suggestions"`
	} `json:"zxcvbn_feedback"`
}

// StrengthCheck asks the provider whether a password is acceptable.
func (c *Client) StrengthCheck(ctx context.Context, password string) (domain.StrengthResult, error) {
	var out strengthCheckResponse
	if err := c.post(ctx, "/v1/b2b/passwords/strength_check", strengthCheckRequest{Password: password}, &out); err != nil {
		return domain.StrengthResult{}, err
	}

	feedback := out.ZxcvbnFeedback.Warning
	if feedback == "" && len(out.ZxcvbnFeedback.Suggestions) > 0 {
		feedback = out.ZxcvbnFeedback.Suggestions[0]
	}
	return domain.StrengthResult{
		Valid:    out.ValidPassword,
		Score:    out.Score,
		Breached: out.BreachedPassword,
		Feedback: feedback,
	}, nil
}

type resetByEmailRequest struct {
	PasswordResetToken string `json:"password_reset_token"`
	Password           string `json:"password"`
}

type resetByEmailResponse struct {
	MemberID       string `json:"member_id"`
	OrganizationID string `json:"organization_id"`
	SessionToken   string `json:"session_token"`
	SessionJWT     string `json:"session_jwt"`
}

// ResetByEmail completes a reset with the token from the emailed link.
func (c *Client) ResetByEmail(ctx context.Context, token, password string) (domain.ResetOutcome, error) {
	var out resetByEmailResponse
	if err := c.post(ctx, "/v1/b2b/passwords/email/reset", resetByEmailRequest{
		PasswordResetToken: token,
		Password:           password,
	}, &out); err != nil {
		return domain.ResetOutcome{}, err
	}
	return domain.ResetOutcome{
		MemberID:       out.MemberID,
		OrganizationID: out.OrganizationID,
		SessionToken:   out.SessionToken,
		SessionJWT:     out.SessionJWT,
	}, nil
}

type resetStartRequest struct {
	OrganizationID                 string `json:"organization_id"`
	EmailAddress                   string `json:"email_address"`
	ResetPasswordRedirectURL       string `json:"reset_password_redirect_url,omitempty"`
	ResetPasswordExpirationMinutes int    `json:"reset_password_expiration_minutes,omitempty"`
}

// ResetStart emails a new reset link to a member of the organization.
func (c *Client) ResetStart(ctx context.Context, organizationID, email, redirectURL string, expiry time.Duration) error {
	return c.post(ctx, "/v1/b2b/passwords/email/reset/start", resetStartRequest{
		OrganizationID:                 organizationID,
		EmailAddress:                   email,
		ResetPasswordRedirectURL:       redirectURL,
		ResetPasswordExpirationMinutes: int(expiry / time.Minute),
	}, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("stytch: encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("stytch: build %s: %w", path, err)
	}
	req.SetBasicAuth(c.projectID, c.secret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.lg.Warn().Err(err).Str("path", path).Dur("duration", time.Since(start)).Msg("stytch_request_failed")
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	c.lg.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("stytch_request_completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("stytch: decode %s: %w", path, err)
	}
	return nil
}
