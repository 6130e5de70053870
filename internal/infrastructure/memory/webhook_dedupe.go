package memory

import (
	"context"
	"sync"
	"time"
)

// WebhookDeduper is the in-process fallback used when Redis is not configured.
// Entries are pruned lazily on write.
type WebhookDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time // id -> expiry
	now  func() time.Time
}

func NewWebhookDeduper() *WebhookDeduper {
	return &WebhookDeduper{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (d *WebhookDeduper) MarkIfNew(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if id == "" {
		return true, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, exp := range d.seen {
		if !now.Before(exp) {
			delete(d.seen, k)
		}
	}

	if _, ok := d.seen[id]; ok {
		return false, nil
	}
	d.seen[id] = now.Add(ttl)
	return true, nil
}
