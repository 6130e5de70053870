package reset

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeProvider struct {
	mu sync.Mutex

	strength    domain.StrengthResult
	strengthErr error
	outcome     domain.ResetOutcome
	resetErr    error
	startErr    error

	strengthCalls int
	resetCalls    []struct{ token, password string }
	startCalls    []struct {
		org, email, redirect string
		expiry               time.Duration
	}
}

func (f *fakeProvider) StrengthCheck(ctx context.Context, password string) (domain.StrengthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strengthCalls++
	return f.strength, f.strengthErr
}

func (f *fakeProvider) ResetByEmail(ctx context.Context, token, password string) (domain.ResetOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls = append(f.resetCalls, struct{ token, password string }{token, password})
	return f.outcome, f.resetErr
}

func (f *fakeProvider) ResetStart(ctx context.Context, org, email, redirect string, expiry time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls = append(f.startCalls, struct {
		org, email, redirect string
		expiry               time.Duration
	}{org, email, redirect, expiry})
	return f.startErr
}

func sourceOf(p Provider) ProviderSource {
	return ProviderFunc(func() (Provider, error) { return p, nil })
}

func brokenSource(err error) ProviderSource {
	return ProviderFunc(func() (Provider, error) { return nil, err })
}

type fakePublisher struct {
	mu     sync.Mutex
	events []ResetConfirmedEvent
	err    error
}

func (f *fakePublisher) PublishResetConfirmed(ctx context.Context, evt ResetConfirmedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	return f.err
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
	ttls []time.Duration
}

func newFakeDeduper() *fakeDeduper { return &fakeDeduper{seen: map[string]bool{}} }

func (f *fakeDeduper) MarkIfNew(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttls = append(f.ttls, ttl)
	if f.err != nil {
		return false, f.err
	}
	if f.seen[id] {
		return false, nil
	}
	f.seen[id] = true
	return true, nil
}

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (f *fakeAuditor) add(action string, fields map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, auditEntry{action: action, fields: fields})
}

func (f *fakeAuditor) ResetSucceeded(ctx context.Context, token, memberID, organizationID string) {
	f.add("reset_succeeded", map[string]string{"token": token, "member_id": memberID, "organization_id": organizationID})
}

func (f *fakeAuditor) ResetFailed(ctx context.Context, token string, category domain.FailureCategory) {
	f.add("reset_failed", map[string]string{"token": token, "category": string(category)})
}

func (f *fakeAuditor) ResetLinkRequested(ctx context.Context, organizationID, email string) {
	f.add("link_requested", map[string]string{"organization_id": organizationID, "email": email})
}

func (f *fakeAuditor) ResetConfirmed(ctx context.Context, userID, deliveryID string) {
	f.add("reset_confirmed", map[string]string{"user_id": userID, "delivery_id": deliveryID})
}

var errProvider = errors.New("provider said no")

// classifyAs returns a Classifier that always answers c.
func classifyAs(c domain.FailureCategory) Classifier {
	return func(error) domain.FailureCategory { return c }
}
