package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/views"
)

const (
	resetSuccessMessage = "Your password has been successfully reset! You can now log in with your new password."
	linkRequestedNotice = "If an account exists for that email, a reset link is on its way."
)

// ResetService is the part of reset.Service the HTML handlers use.
type ResetService interface {
	CheckToken(ctx context.Context, token string, tokenType domain.TokenType) error
	Reset(ctx context.Context, req domain.ResetRequest) (domain.ResetOutcome, error)
	RequestLink(ctx context.Context, organizationID, email string) error
}

type Renderer interface {
	Reset(w http.ResponseWriter, r *http.Request, status int, p views.ResetPage)
	RequestLink(w http.ResponseWriter, r *http.Request, status int, p views.RequestLinkPage)
}

type ResetHandler struct {
	svc  ResetService
	view Renderer
}

func NewResetHandler(svc ResetService, view Renderer) *ResetHandler {
	return &ResetHandler{svc: svc, view: view}
}

// Show renders the form for a reset link. The token is only checked for presence.
func (h *ResetHandler) Show(w http.ResponseWriter, r *http.Request) {
	q := dto.ResetPasswordQueryFrom(r)

	if err := h.svc.CheckToken(r.Context(), q.Token, domain.ParseTokenType(q.TokenType)); err != nil {
		h.view.Reset(w, r, response.StatusOf(err), views.ResetPage{Error: messageOf(err)})
		return
	}

	h.view.Reset(w, r, http.StatusOK, views.ResetPage{
		Token:     q.Token,
		TokenType: q.TokenType,
	})
}

func (h *ResetHandler) Submit(w http.ResponseWriter, r *http.Request) {
	form, err := dto.ResetPasswordFormFrom(w, r)
	if err != nil {
		middleware.PasswordResetTotal.WithLabelValues("malformed").Inc()
		h.view.Reset(w, r, response.StatusOf(err), views.ResetPage{Error: messageOf(err)})
		return
	}

	out, err := h.svc.Reset(r.Context(), form.ToDomain())
	if err != nil {
		middleware.PasswordResetTotal.WithLabelValues(outcomeOf(err)).Inc()

		page := views.ResetPage{Error: messageOf(err)}
		// Missing token never gets a form back.
		if !domain.Is(err, "missing_token") {
			page.Token = form.Token
			page.TokenType = form.TokenType
		}
		if domain.Is(err, "reset_failed") {
			page.OfferNewLink = domain.CategoryOf(err).NeedsNewLink()
		}
		h.view.Reset(w, r, response.StatusOf(err), page)
		return
	}

	middleware.PasswordResetTotal.WithLabelValues("success").Inc()
	logger.Ctx(r.Context()).Info().
		Str("member_id", out.MemberID).
		Str("organization_id", out.OrganizationID).
		Msg("password reset completed")

	h.view.Reset(w, r, http.StatusOK, views.ResetPage{Success: resetSuccessMessage})
}

func (h *ResetHandler) RequestLinkForm(w http.ResponseWriter, r *http.Request) {
	h.view.RequestLink(w, r, http.StatusOK, views.RequestLinkPage{
		OrganizationID: r.URL.Query().Get("organization_id"),
	})
}

func (h *ResetHandler) RequestLink(w http.ResponseWriter, r *http.Request) {
	form, err := dto.RequestLinkFormFrom(w, r)
	if err == nil {
		err = h.svc.RequestLink(r.Context(), form.OrganizationID, form.Email)
	}
	if err != nil {
		middleware.ResetLinkRequestsTotal.WithLabelValues(outcomeOf(err)).Inc()
		h.view.RequestLink(w, r, response.StatusOf(err), views.RequestLinkPage{
			OrganizationID: form.OrganizationID,
			Email:          form.Email,
			Error:          messageOf(err),
		})
		return
	}

	middleware.ResetLinkRequestsTotal.WithLabelValues("accepted").Inc()
	h.view.RequestLink(w, r, http.StatusOK, views.RequestLinkPage{Notice: linkRequestedNotice})
}

// messageOf returns the user-safe text of err.
func messageOf(err error) string {
	if de, ok := domain.As(err); ok {
		return de.Message
	}
	return domain.ErrInternal(err).Message
}

// outcomeOf is the metrics label for a failed submission.
func outcomeOf(err error) string {
	de, ok := domain.As(err)
	if !ok {
		return "internal_error"
	}
	if de.Code == "reset_failed" {
		return string(domain.CategoryOf(err))
	}
	return de.Code
}
