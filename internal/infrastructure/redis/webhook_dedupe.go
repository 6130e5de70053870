package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const webhookDedupePrefix = "reset:webhook:delivery:"

// WebhookDeduper records webhook delivery ids with SET NX.
type WebhookDeduper struct {
	rdb *goredis.Client
}

func NewWebhookDeduper(c *Client) *WebhookDeduper {
	return &WebhookDeduper{rdb: c.rdb}
}

func (d *WebhookDeduper) MarkIfNew(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if id == "" {
		return true, nil
	}
	ok, err := d.rdb.SetNX(ctx, webhookDedupePrefix+id, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("webhook dedupe setnx: %w", err)
	}
	return ok, nil
}
