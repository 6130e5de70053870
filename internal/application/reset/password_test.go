package reset

import (
	"context"
	"errors"
	"testing"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

func validRequest() domain.ResetRequest {
	return domain.ResetRequest{
		Token:           "reset-token-0123456789",
		TokenType:       domain.TokenTypeOrganization,
		NewPassword:     "correct-horse-battery",
		ConfirmPassword: "correct-horse-battery",
	}
}

func TestCheckToken(t *testing.T) {
	s := NewService(sourceOf(&fakeProvider{}), Config{})

	if err := s.CheckToken(context.Background(), "", domain.TokenTypeOrganization); !domain.Is(err, "missing_token") {
		t.Fatalf("expected missing_token, got %v", err)
	}
	if err := s.CheckToken(context.Background(), "abc", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReset_MissingToken_NoProviderCall(t *testing.T) {
	p := &fakeProvider{}
	s := NewService(sourceOf(p), Config{})

	req := validRequest()
	req.Token = "   "
	_, err := s.Reset(context.Background(), req)

	if !domain.Is(err, "missing_token") {
		t.Fatalf("expected missing_token, got %v", err)
	}
	if len(p.resetCalls) != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestReset_LocalValidation(t *testing.T) {
	cases := []struct {
		name     string
		newPwd   string
		confirm  string
		wantCode string
		wantMsg  string
	}{
		{"mismatch", "abcdefgh", "abcdefgx", "password_mismatch", "Passwords do not match. Please try again."},
		{"mismatch wins over short", "short", "shorter", "password_mismatch", "Passwords do not match. Please try again."},
		{"too short", "short", "short", "password_too_short", "Password must be at least 8 characters long."},
		{"seven chars", "abcdefg", "abcdefg", "password_too_short", "Password must be at least 8 characters long."},
		{"empty both", "", "", "password_too_short", "Password must be at least 8 characters long."},
		{"multibyte counted as runes", "ééééééé", "ééééééé", "password_too_short", "Password must be at least 8 characters long."},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &fakeProvider{}
			s := NewService(sourceOf(p), Config{})

			req := validRequest()
			req.NewPassword, req.ConfirmPassword = c.newPwd, c.confirm
			_, err := s.Reset(context.Background(), req)

			de, ok := domain.As(err)
			if !ok {
				t.Fatalf("expected domain error, got %v", err)
			}
			if de.Code != c.wantCode || de.Message != c.wantMsg {
				t.Fatalf("got code=%q msg=%q", de.Code, de.Message)
			}
			if len(p.resetCalls) != 0 || p.strengthCalls != 0 {
				t.Fatalf("provider must not be called on local validation failure")
			}
		})
	}
}

func TestReset_EightCharsAccepted(t *testing.T) {
	p := &fakeProvider{}
	s := NewService(sourceOf(p), Config{})

	req := validRequest()
	req.NewPassword, req.ConfirmPassword = "abcdefgh", "abcdefgh"
	if _, err := s.Reset(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.resetCalls) != 1 {
		t.Fatalf("expected one provider call")
	}
}

func TestReset_ConfigurationError(t *testing.T) {
	s := NewService(brokenSource(domain.ErrConfiguration(errors.New("missing secret"))), Config{})

	_, err := s.Reset(context.Background(), validRequest())

	de, ok := domain.As(err)
	if !ok || de.Kind != domain.KindConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if de.Message != "Configuration error. Please contact support." {
		t.Fatalf("unexpected message %q", de.Message)
	}
}

func TestReset_NonDomainSourceErrorBecomesConfiguration(t *testing.T) {
	s := NewService(brokenSource(errors.New("boom")), Config{})

	_, err := s.Reset(context.Background(), validRequest())
	if !domain.Is(err, "provider_not_configured") {
		t.Fatalf("expected provider_not_configured, got %v", err)
	}
}

func TestReset_Success(t *testing.T) {
	p := &fakeProvider{outcome: domain.ResetOutcome{MemberID: "member-1", OrganizationID: "org-1"}}
	aud := &fakeAuditor{}
	s := NewService(sourceOf(p), Config{}, WithAuditor(aud))

	out, err := s.Reset(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.MemberID != "member-1" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(p.resetCalls) != 1 || p.resetCalls[0].token != "reset-token-0123456789" || p.resetCalls[0].password != "correct-horse-battery" {
		t.Fatalf("unexpected provider calls %+v", p.resetCalls)
	}
	if len(aud.entries) != 1 || aud.entries[0].action != "reset_succeeded" {
		t.Fatalf("unexpected audit entries %+v", aud.entries)
	}
}

func TestReset_BothTokenTypesUseSameOperation(t *testing.T) {
	for _, tt := range []domain.TokenType{domain.TokenTypeOrganization, domain.TokenTypeIndividual, "", "other"} {
		p := &fakeProvider{}
		s := NewService(sourceOf(p), Config{})

		req := validRequest()
		req.TokenType = tt
		if _, err := s.Reset(context.Background(), req); err != nil {
			t.Fatalf("token type %q: unexpected error %v", tt, err)
		}
		if len(p.resetCalls) != 1 {
			t.Fatalf("token type %q: expected reset call", tt)
		}
	}
}

func TestReset_ProviderFailureIsClassified(t *testing.T) {
	for _, cat := range []domain.FailureCategory{
		domain.FailureExpired,
		domain.FailureInvalid,
		domain.FailureAlreadyUsed,
		domain.FailureWeakPassword,
		domain.FailureUnknown,
	} {
		p := &fakeProvider{resetErr: errProvider}
		aud := &fakeAuditor{}
		s := NewService(sourceOf(p), Config{}, WithClassifier(classifyAs(cat)), WithAuditor(aud))

		_, err := s.Reset(context.Background(), validRequest())

		de, ok := domain.As(err)
		if !ok || de.Code != "reset_failed" {
			t.Fatalf("%s: expected reset_failed, got %v", cat, err)
		}
		if de.Message != cat.Message() {
			t.Fatalf("%s: unexpected message %q", cat, de.Message)
		}
		if domain.CategoryOf(err) != cat {
			t.Fatalf("%s: category not carried", cat)
		}
		if !errors.Is(err, errProvider) {
			t.Fatalf("%s: cause not wrapped", cat)
		}
		if len(aud.entries) != 1 || aud.entries[0].fields["category"] != string(cat) {
			t.Fatalf("%s: unexpected audit %+v", cat, aud.entries)
		}
	}
}

func TestReset_DefaultClassifierIsUnknown(t *testing.T) {
	s := NewService(sourceOf(&fakeProvider{resetErr: errProvider}), Config{})

	_, err := s.Reset(context.Background(), validRequest())
	if domain.CategoryOf(err) != domain.FailureUnknown {
		t.Fatalf("expected unknown category, got %v", err)
	}
}

func TestReset_StrengthCheck(t *testing.T) {
	t.Run("disabled skips check", func(t *testing.T) {
		p := &fakeProvider{strength: domain.StrengthResult{Valid: false}}
		s := NewService(sourceOf(p), Config{StrengthCheck: false})

		if _, err := s.Reset(context.Background(), validRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.strengthCalls != 0 {
			t.Fatalf("strength check should not run")
		}
	})

	t.Run("weak password stops before reset", func(t *testing.T) {
		p := &fakeProvider{strength: domain.StrengthResult{Valid: false, Score: 1}}
		s := NewService(sourceOf(p), Config{StrengthCheck: true})

		_, err := s.Reset(context.Background(), validRequest())
		if domain.CategoryOf(err) != domain.FailureWeakPassword {
			t.Fatalf("expected weak_password, got %v", err)
		}
		if len(p.resetCalls) != 0 {
			t.Fatalf("reset must not be called for a weak password")
		}
	})

	t.Run("strong password proceeds", func(t *testing.T) {
		p := &fakeProvider{strength: domain.StrengthResult{Valid: true, Score: 4}}
		s := NewService(sourceOf(p), Config{StrengthCheck: true})

		if _, err := s.Reset(context.Background(), validRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.strengthCalls != 1 || len(p.resetCalls) != 1 {
			t.Fatalf("expected strength + reset calls")
		}
	})

	t.Run("check error falls through to reset", func(t *testing.T) {
		p := &fakeProvider{strengthErr: errors.New("timeout")}
		s := NewService(sourceOf(p), Config{StrengthCheck: true})

		if _, err := s.Reset(context.Background(), validRequest()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.resetCalls) != 1 {
			t.Fatalf("expected reset call")
		}
	})
}
