package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/charlesng35/memberhub/pkg/logger"
)

// DefaultQueue receives intention events when no queue is configured.
const DefaultQueue = "memberhub.intentions"

// AMQPConfig configures the RabbitMQ publisher.
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(cfg AMQPConfig) (amqpConnection, amqpChannel, error)

type amqpConnection interface {
	Close() error
}

// AMQPPublisher publishes events as persistent JSON messages. The connection is
// opened lazily and re-established after a failed publish.
type AMQPPublisher struct {
	cfg  AMQPConfig
	dial dialFunc
	now  func() time.Time

	mu   sync.Mutex
	conn amqpConnection
	ch   amqpChannel
}

// NewAMQPPublisher constructs a publisher for cfg. No connection is made until
// the first Publish call.
func NewAMQPPublisher(cfg AMQPConfig) (*AMQPPublisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("events: amqp url is required")
	}
	if strings.TrimSpace(cfg.Queue) == "" {
		cfg.Queue = DefaultQueue
	}
	return &AMQPPublisher{cfg: cfg, dial: dialAMQP, now: time.Now}, nil
}

// Publish sends event to the configured exchange using the queue as routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, event IntentionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		conn, ch, err := p.dial(p.cfg)
		if err != nil {
			return err
		}
		p.conn, p.ch = conn, ch
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Type:         event.Type,
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, p.cfg.Exchange, p.cfg.Queue, false, false, msg); err != nil {
		// drop the channel so the next publish reconnects
		_ = p.closeLocked()
		return fmt.Errorf("events: publish %s: %w", event.Type, err)
	}

	logger.WithModule("events").Debug("intention event published",
		zap.String("type", event.Type),
		zap.Uint("intention_id", event.IntentionID),
	)
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() error {
	var err error
	if p.ch != nil {
		err = multierr.Append(err, p.ch.Close())
	}
	if p.conn != nil {
		err = multierr.Append(err, p.conn.Close())
	}
	p.ch, p.conn = nil, nil
	return err
}

func dialAMQP(cfg AMQPConfig) (amqpConnection, amqpChannel, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("events: dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("events: open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("events: declare queue %q: %w", cfg.Queue, err)
	}

	if cfg.Exchange != "" {
		if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("events: declare exchange %q: %w", cfg.Exchange, err)
		}
		if err := ch.QueueBind(cfg.Queue, cfg.Queue, cfg.Exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("events: bind queue %q: %w", cfg.Queue, err)
		}
	}

	return conn, ch, nil
}
