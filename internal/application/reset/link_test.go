package reset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

func TestRequestLink_Success(t *testing.T) {
	p := &fakeProvider{}
	aud := &fakeAuditor{}
	s := NewService(sourceOf(p), Config{RedirectURL: "https://app.example.com/reset_password/"}, WithAuditor(aud))

	if err := s.RequestLink(context.Background(), " org-1 ", "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.startCalls) != 1 {
		t.Fatalf("expected one reset/start call")
	}
	c := p.startCalls[0]
	if c.org != "org-1" || c.email != "alice@example.com" || c.redirect != "https://app.example.com/reset_password/" {
		t.Fatalf("unexpected call %+v", c)
	}
	if c.expiry != 30*time.Minute {
		t.Fatalf("expected default expiry, got %v", c.expiry)
	}
	if len(aud.entries) != 1 || aud.entries[0].action != "link_requested" {
		t.Fatalf("unexpected audit %+v", aud.entries)
	}
}

func TestRequestLink_ProviderFailureIsSwallowed(t *testing.T) {
	p := &fakeProvider{startErr: errProvider}
	s := NewService(sourceOf(p), Config{})

	if err := s.RequestLink(context.Background(), "org-1", "nobody@example.com"); err != nil {
		t.Fatalf("expected nil for provider failure, got %v", err)
	}
}

func TestRequestLink_Validation(t *testing.T) {
	cases := []struct {
		name, org, email, field string
	}{
		{"missing org", "", "a@example.com", "organization_id"},
		{"missing email", "org-1", "", "email"},
		{"bad email", "org-1", "not-an-email", "email"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &fakeProvider{}
			s := NewService(sourceOf(p), Config{})

			err := s.RequestLink(context.Background(), c.org, c.email)
			de, ok := domain.As(err)
			if !ok || de.Code != "invalid_field" {
				t.Fatalf("expected invalid_field, got %v", err)
			}
			if de.Meta["field"] != c.field {
				t.Fatalf("expected field %q, got %+v", c.field, de.Meta)
			}
			if len(p.startCalls) != 0 {
				t.Fatalf("provider must not be called")
			}
		})
	}
}

func TestRequestLink_ConfigurationError(t *testing.T) {
	s := NewService(brokenSource(domain.ErrConfiguration(errors.New("missing"))), Config{})

	err := s.RequestLink(context.Background(), "org-1", "a@example.com")
	if !domain.Is(err, "provider_not_configured") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
