package dto

import (
	"net/http"
	"strings"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

// MaxFormBytes bounds HTML form bodies.
const MaxFormBytes = 64 << 10

// -------- Reset form --------

type ResetPasswordQuery struct {
	Token     string
	TokenType string
}

// ResetPasswordQueryFrom reads the link parameters the provider appends to the redirect URL.
func ResetPasswordQueryFrom(r *http.Request) ResetPasswordQuery {
	q := r.URL.Query()
	return ResetPasswordQuery{
		Token:     strings.TrimSpace(q.Get("token")),
		TokenType: strings.TrimSpace(q.Get("stytch_token_type")),
	}
}

type ResetPasswordForm struct {
	Token           string
	TokenType       string
	NewPassword     string
	ConfirmPassword string
}

// ResetPasswordFormFrom reads the POSTed form. The token falls back to the query
// string and the token type prefers the query string over the hidden field.
// Passwords are taken verbatim.
func ResetPasswordFormFrom(w http.ResponseWriter, r *http.Request) (ResetPasswordForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		return ResetPasswordForm{}, domain.ErrInvalidField("form", "malformed")
	}

	q := ResetPasswordQueryFrom(r)
	f := ResetPasswordForm{
		Token:           strings.TrimSpace(r.PostForm.Get("token")),
		TokenType:       q.TokenType,
		NewPassword:     r.PostForm.Get("new_password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}
	if f.Token == "" {
		f.Token = q.Token
	}
	if f.TokenType == "" {
		f.TokenType = strings.TrimSpace(r.PostForm.Get("stytch_token_type"))
	}
	return f, nil
}

func (f ResetPasswordForm) ToDomain() domain.ResetRequest {
	return domain.ResetRequest{
		Token:           f.Token,
		TokenType:       domain.ParseTokenType(f.TokenType),
		NewPassword:     f.NewPassword,
		ConfirmPassword: f.ConfirmPassword,
	}
}

// -------- Reset link request --------

type RequestLinkForm struct {
	OrganizationID string
	Email          string
}

func RequestLinkFormFrom(w http.ResponseWriter, r *http.Request) (RequestLinkForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		return RequestLinkForm{}, domain.ErrInvalidField("form", "malformed")
	}
	return RequestLinkForm{
		OrganizationID: strings.TrimSpace(r.PostForm.Get("organization_id")),
		Email:          strings.TrimSpace(r.PostForm.Get("email")),
	}, nil
}
