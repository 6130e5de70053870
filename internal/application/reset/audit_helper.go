package reset

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

type nopAuditor struct{}

func (nopAuditor) ResetSucceeded(context.Context, string, string, string)      {}
func (nopAuditor) ResetFailed(context.Context, string, domain.FailureCategory) {}
func (nopAuditor) ResetLinkRequested(context.Context, string, string)          {}
func (nopAuditor) ResetConfirmed(context.Context, string, string)              {}

func domainCode(err error) string {
	if err == nil {
		return ""
	}
	if de, ok := domain.As(err); ok {
		return de.Code
	}
	return "non_domain_error"
}
