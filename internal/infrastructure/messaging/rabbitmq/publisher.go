package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/application/reset"
)

const (
	DefaultExchange   = "identity.events"
	DefaultRoutingKey = "identity.password.reset.confirmed"

	defaultTimeout = 3 * time.Second

	messageType = "password.reset_confirmed"
	appID       = "reset-service"
)

// Options configures where reset-confirmed notifications go.
type Options struct {
	URL        string
	Exchange   string
	RoutingKey string
	Timeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.Exchange == "" {
		o.Exchange = DefaultExchange
	}
	if o.RoutingKey == "" {
		o.RoutingKey = DefaultRoutingKey
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return o
}

// Publisher emits one notification per confirmed reset. Delivery is best
// effort: no publisher confirms, and a message nobody is bound for is dropped
// by the broker. The webhook has already been acknowledged by then.
type Publisher struct {
	opts Options

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(opts Options) (*Publisher, error) {
	p := &Publisher{opts: opts.withDefaults()}
	if err := p.dial(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) PublishResetConfirmed(ctx context.Context, evt reset.ResetConfirmedEvent) error {
	msg, err := resetConfirmedMessage(evt)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.closeLocked()
		if err := p.dial(); err != nil {
			return err
		}
	}

	if err := p.ch.PublishWithContext(ctx, p.opts.Exchange, p.opts.RoutingKey, false, false, msg); err != nil {
		p.closeLocked()
		return fmt.Errorf("rabbitmq publish %s: %w", p.opts.RoutingKey, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLocked()
	return nil
}

// resetConfirmedMessage carries the webhook delivery id as MessageId so
// consumers can drop redeliveries.
func resetConfirmedMessage(evt reset.ResetConfirmedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal reset confirmed: %w", err)
	}

	ts := evt.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.DeliveryID,
		Type:         messageType,
		AppId:        appID,
		Timestamp:    ts.UTC(),
		Body:         body,
	}, nil
}

// dial must be called with mu held (or before the publisher is shared).
func (p *Publisher) dial() error {
	conn, err := amqp.Dial(p.opts.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(p.opts.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq exchange %s: %w", p.opts.Exchange, err)
	}

	p.conn, p.ch = conn, ch
	return nil
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
