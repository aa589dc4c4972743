package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	connectionName   = "rentalert-api"
	dialTimeout      = 15 * time.Second
	heartbeat        = 10 * time.Second
	reconnectBackoff = time.Second
	maxBackoff       = 30 * time.Second
)

var errNotConfirmed = errors.New("broker did not confirm the event")

// RabbitMQ owns one broker connection and a single confirm-mode channel used to
// publish reminder job events. Both are reopened lazily after a broker restart.
type RabbitMQ struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel

	// live mirrors conn for Ping, which must not wait behind a pending confirm.
	live atomic.Pointer[amqp.Connection]
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}

	r := &RabbitMQ{url: url}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.publishChannel(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

// publish sends one message and blocks until the broker acks it.
func (r *RabbitMQ) publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, err := r.publishChannel(ctx)
	if err != nil {
		return err
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, true, false, msg)
	if err != nil {
		// Drop the channel so the next publish starts from a fresh one.
		r.resetChannel()
		return fmt.Errorf("failed to publish to %q: %w", exchange, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("waiting for broker confirm: %w", err)
	}
	if !acked {
		return errNotConfirmed
	}
	return nil
}

// publishChannel returns the open confirm channel, dialing and declaring the
// topology when needed. Callers hold r.mu.
func (r *RabbitMQ) publishChannel(ctx context.Context) (*amqp.Channel, error) {
	if r.ch != nil && !r.ch.IsClosed() && r.conn != nil && !r.conn.IsClosed() {
		return r.ch, nil
	}
	r.resetChannel()

	if r.conn == nil || r.conn.IsClosed() {
		conn, err := dialWithBackoff(ctx, r.url)
		if err != nil {
			return nil, err
		}
		r.conn = conn
		r.live.Store(conn)
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if err := declareTopology(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	r.ch = ch
	return ch, nil
}

func (r *RabbitMQ) resetChannel() {
	if r.ch != nil && !r.ch.IsClosed() {
		_ = r.ch.Close()
	}
	r.ch = nil
}

func dialWithBackoff(ctx context.Context, url string) (*amqp.Connection, error) {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(connectionName)

	wait := reconnectBackoff
	for {
		conn, err := amqp.DialConfig(url, amqp.Config{
			Heartbeat:  heartbeat,
			Properties: props,
		})
		if err == nil {
			return conn, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("rabbitmq connect canceled: %w (last error: %v)", ctx.Err(), err)
		case <-time.After(wait):
		}

		wait *= 2
		if wait > maxBackoff {
			wait = maxBackoff
		}
	}
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare events exchange: %w", err)
	}
	if err := ch.ExchangeDeclare(dlxExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dlx exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(jobEventsDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dlq %q: %w", jobEventsDLQ, err)
	}
	if err := ch.QueueBind(jobEventsDLQ, "", dlxExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind dlq %q: %w", jobEventsDLQ, err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": dlxExchangeName,
	}
	if _, err := ch.QueueDeclare(JobEventsQueue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %q: %w", JobEventsQueue, err)
	}
	if err := ch.QueueBind(JobEventsQueue, jobEventsBind, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %q: %w", JobEventsQueue, err)
	}

	return nil
}

// Ping reports whether the broker connection is currently open.
func (r *RabbitMQ) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	conn := r.live.Load()
	if conn == nil || conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection is closed")
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resetChannel()
	conn := r.conn
	r.conn = nil
	r.live.Store(nil)
	if conn == nil || conn.IsClosed() {
		return nil
	}
	return conn.Close()
}
