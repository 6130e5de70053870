package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/application/reset"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/infrastructure/stytch"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/transport/http/views"
)

// stubProvider records calls; it is the provider side of an end-to-end handler test.
type stubProvider struct {
	mu sync.Mutex

	outcome  domain.ResetOutcome
	resetErr error
	startErr error

	resetCalls int
	startCalls int
}

func (p *stubProvider) StrengthCheck(ctx context.Context, password string) (domain.StrengthResult, error) {
	return domain.StrengthResult{Valid: true}, nil
}

func (p *stubProvider) ResetByEmail(ctx context.Context, token, password string) (domain.ResetOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetCalls++
	return p.outcome, p.resetErr
}

func (p *stubProvider) ResetStart(ctx context.Context, org, email, redirect string, expiry time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startCalls++
	return p.startErr
}

func (p *stubProvider) calls() (reset, start int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resetCalls, p.startCalls
}

func newResetHandler(t *testing.T, p reset.Provider) *ResetHandler {
	t.Helper()
	src := reset.ProviderFunc(func() (reset.Provider, error) { return p, nil })
	svc := reset.NewService(src, reset.Config{}, reset.WithClassifier(stytch.Classify))
	return NewResetHandler(svc, views.MustRenderer())
}

func newUnconfiguredHandler(t *testing.T) *ResetHandler {
	t.Helper()
	src := reset.ProviderFunc(func() (reset.Provider, error) {
		return nil, domain.ErrConfiguration(errors.New("STYTCH_SECRET missing"))
	})
	return NewResetHandler(reset.NewService(src, reset.Config{}), views.MustRenderer())
}

func postForm(target string, v url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func passwordForm(token, pw, confirm string) url.Values {
	return url.Values{
		"token":            {token},
		"new_password":     {pw},
		"confirm_password": {confirm},
	}
}
