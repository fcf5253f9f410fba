package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/community-amenities/internal/config"
	"github.com/iliyamo/community-amenities/internal/logger"
)

// Publisher publishes reservation events to a durable RabbitMQ queue.
// The connection is opened lazily and reopened after a failure, so a
// broker that is down at startup does not prevent the server from
// running.  Errors are logged and returned; callers may ignore them.
//
// A failed dial is not retried until retryBackoff has passed; Publish
// fails fast with ErrBrokerUnavailable in the meantime.
type Publisher struct {
	url          string
	queue        string
	log          *logger.Logger
	dialTimeout  time.Duration
	retryBackoff time.Duration

	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	retryAt time.Time
}

// ErrBrokerUnavailable is returned while the publisher waits out the
// backoff after a failed dial.
var ErrBrokerUnavailable = errors.New("rabbitmq: broker unavailable")

const (
	defaultDialTimeout = 2 * time.Second
	dialRetryBackoff   = 5 * time.Second
)

// NewPublisher returns a publisher for cfg.Queue.  No connection is made
// until the first Publish.
func NewPublisher(cfg config.EventsConfig, log *logger.Logger) *Publisher {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	return &Publisher{
		url:          cfg.URL,
		queue:        cfg.Queue,
		log:          log,
		dialTimeout:  timeout,
		retryBackoff: dialRetryBackoff,
	}
}

// Publish sends ev as a persistent JSON message routed to the queue via
// the default exchange.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("rabbitmq: marshal event failed", "error", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel(ctx)
	if err != nil {
		p.log.Warn("rabbitmq: connect failed", "error", err, "event", ev.Type)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		MessageId:    ev.EventID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		p.log.Warn("rabbitmq: publish failed", "error", err, "event", ev.Type, "reservation_id", ev.ReservationID)
		p.reset()
		return err
	}
	return nil
}

// channel returns the cached channel, dialing and declaring the queue when
// needed.  The dial never outlives ctx's deadline.  p.mu must be held.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if wait := time.Until(p.retryAt); wait > 0 {
		return nil, fmt.Errorf("%w: next dial in %s", ErrBrokerUnavailable, wait.Round(time.Millisecond))
	}
	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}

	conn, err := dial(p.url, timeout)
	if err != nil {
		p.retryAt = time.Now().Add(p.retryBackoff)
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	// Durable so messages survive broker restarts.
	if _, err := declareQueue(ch, p.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// dial opens a connection whose TCP connect and AMQP handshake together
// take at most timeout.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
}
