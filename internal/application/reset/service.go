package reset

import (
	"time"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

type Service struct {
	providers ProviderSource
	classify  Classifier
	pub       EventPublisher
	dedupe    WebhookDeduper
	audit     Auditor

	strengthCheck bool
	redirectURL   string
	linkExpiry    time.Duration
	dedupeTTL     time.Duration
	now           func() time.Time
}

type Config struct {
	StrengthCheck bool
	RedirectURL   string
	LinkExpiry    time.Duration
	DedupeTTL     time.Duration
}

type Option func(*Service)

// WithClassifier sets how provider errors map to failure categories.
func WithClassifier(c Classifier) Option {
	return func(s *Service) { s.classify = c }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.pub = p }
}

func WithDeduper(d WebhookDeduper) Option {
	return func(s *Service) { s.dedupe = d }
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) { s.audit = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(providers ProviderSource, cfg Config, opts ...Option) *Service {
	expiry := cfg.LinkExpiry
	if expiry <= 0 {
		expiry = 30 * time.Minute
	}
	dedupeTTL := cfg.DedupeTTL
	if dedupeTTL <= 0 {
		dedupeTTL = 24 * time.Hour
	}

	s := &Service{
		providers:     providers,
		classify:      func(error) domain.FailureCategory { return domain.FailureUnknown },
		audit:         nopAuditor{},
		strengthCheck: cfg.StrengthCheck,
		redirectURL:   cfg.RedirectURL,
		linkExpiry:    expiry,
		dedupeTTL:     dedupeTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// provider resolves the shared handle; any failure is a configuration error.
func (s *Service) provider() (Provider, error) {
	p, err := s.providers.Provider()
	if err != nil {
		if domain.Is(err, "provider_not_configured") {
			return nil, err
		}
		return nil, domain.ErrConfiguration(err)
	}
	if p == nil {
		return nil, domain.ErrConfiguration(nil)
	}
	return p, nil
}
