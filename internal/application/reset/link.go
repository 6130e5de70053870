package reset

import (
	"context"
	"strings"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
)

// RequestLink asks the provider to email a fresh reset link.
// It is non-enumerating: provider failures are logged and swallowed, so the
// caller renders the same message whether or not the account exists.
func (s *Service) RequestLink(ctx context.Context, organizationID, email string) error {
	organizationID = strings.TrimSpace(organizationID)
	email = strings.TrimSpace(email)

	if err := validateLinkInput(organizationID, email); err != nil {
		return err
	}

	p, err := s.provider()
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("provider unavailable")
		return err
	}

	s.audit.ResetLinkRequested(ctx, organizationID, email)

	if err := p.ResetStart(ctx, organizationID, email, s.redirectURL, s.linkExpiry); err != nil {
		logger.Ctx(ctx).Warn().
			Err(err).
			Str("organization_id", organizationID).
			Str("category", string(s.classify(err))).
			Msg("reset link request failed")
	}
	return nil
}
