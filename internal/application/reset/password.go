package reset

import (
	"context"
	"strings"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
)

// CheckToken gates the form display. The token is not verified with the provider here.
func (s *Service) CheckToken(ctx context.Context, token string, tokenType domain.TokenType) error {
	logger.Ctx(ctx).Info().
		Bool("token_present", strings.TrimSpace(token) != "").
		Str("token_type", tokenType.String()).
		Str("token_prefix", domain.MaskToken(token)).
		Msg("reset form requested")

	if strings.TrimSpace(token) == "" {
		return domain.ErrMissingToken()
	}
	return nil
}

// Reset validates the submitted pair locally and then asks the provider to
// set the new password. Local validation failures never reach the provider.
func (s *Service) Reset(ctx context.Context, req domain.ResetRequest) (domain.ResetOutcome, error) {
	lg := logger.Ctx(ctx).With().
		Bool("token_present", strings.TrimSpace(req.Token) != "").
		Str("token_type", req.TokenType.String()).
		Str("token_prefix", domain.MaskToken(req.Token)).
		Logger()

	if strings.TrimSpace(req.Token) == "" {
		lg.Warn().Msg("reset submitted without token")
		return domain.ResetOutcome{}, domain.ErrMissingToken()
	}

	if err := validatePasswords(req.NewPassword, req.ConfirmPassword); err != nil {
		lg.Info().Str("code", domainCode(err)).Msg("reset rejected by local validation")
		return domain.ResetOutcome{}, err
	}

	p, err := s.provider()
	if err != nil {
		lg.Error().Err(err).Msg("provider unavailable")
		return domain.ResetOutcome{}, err
	}

	if s.strengthCheck {
		res, err := p.StrengthCheck(ctx, req.NewPassword)
		switch {
		case err != nil:
			// the reset call enforces the provider's policy anyway
			lg.Warn().Err(err).Msg("strength check failed, continuing")
		case !res.Valid:
			lg.Info().Int("score", res.Score).Bool("breached", res.Breached).Msg("password rejected by strength check")
			s.audit.ResetFailed(ctx, req.Token, domain.FailureWeakPassword)
			return domain.ResetOutcome{}, domain.ErrResetFailed(domain.FailureWeakPassword, nil)
		}
	}

	// organization and individual tokens share the same provider operation
	out, err := p.ResetByEmail(ctx, req.Token, req.NewPassword)
	if err != nil {
		category := s.classify(err)
		lg.Warn().Err(err).Str("category", string(category)).Msg("provider rejected reset")
		s.audit.ResetFailed(ctx, req.Token, category)
		return domain.ResetOutcome{}, domain.ErrResetFailed(category, err)
	}

	lg.Info().Str("member_id", out.MemberID).Msg("password reset succeeded")
	s.audit.ResetSucceeded(ctx, req.Token, out.MemberID, out.OrganizationID)
	return out, nil
}
