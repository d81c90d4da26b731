// Package rabbitmq reads RabbitMQ queues for the monitor over AMQP 0-9-1.
//
// AMQP has no peek or sequence numbers. Depth comes from a passive queue.declare, so
// polling never takes messages off the queue. Peeked messages are browsed with
// basic.get without acknowledging them and handed back to the queue when the browsing
// channel closes. While browsed they are invisible to other consumers and come back
// flagged as redelivered. A message's sequence number is its 1-based position in the
// browse. The dead-letter view is the queue named after the main queue plus the
// configured suffix.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	DefaultDeadLetterSuffix = ".dlq"

	connectTimeout = 10 * time.Second
	heartbeat      = 10 * time.Second
)

func init() {
	broker.Register("amqp", Dial)
	broker.Register("amqps", Dial)
}

type Client struct {
	conn   *amqp.Connection
	suffix string
}

var (
	_ broker.Client          = (*Client)(nil)
	_ broker.ConnectionState = (*Client)(nil)
)

// Dial connects to the broker at an amqp:// or amqps:// URL.
func Dial(ctx context.Context, target string, opts broker.Options) (broker.Client, error) {
	name := opts.ConnectionName
	if name == "" {
		name = "otterwatch-" + uuid.NewString()
	}
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(name)

	conn, err := amqp.DialConfig(target, amqp.Config{
		Heartbeat:  heartbeat,
		Locale:     "en_US",
		Properties: props,
		Dial:       amqp.DefaultDial(connectTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	if err := ctx.Err(); err != nil {
		conn.Close()
		return nil, err
	}

	suffix := opts.DeadLetterSuffix
	if suffix == "" {
		suffix = DefaultDeadLetterSuffix
	}
	log.Debug().Str("connection_name", name).Msg("AMQP connection established")
	return &Client{conn: conn, suffix: suffix}, nil
}

// QueueName returns the AMQP queue backing a view of queue.
func (c *Client) QueueName(queue string, view broker.View) string {
	return queueName(queue, view, c.suffix)
}

func queueName(queue string, view broker.View, suffix string) string {
	if view == broker.ViewDeadLetter {
		return queue + suffix
	}
	return queue
}

// OpenReader checks that the view's queue exists. A missing dead-letter queue reads as
// an empty view.
func (c *Client) OpenReader(ctx context.Context, queue string, view broker.View) (broker.PageReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := c.QueueName(queue, view)

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclarePassive(name, false, false, false, false, nil); err != nil {
		ch.Close()
		if view == broker.ViewDeadLetter && isNotFound(err) {
			log.Debug().Str("queue", name).Msg("Dead-letter queue not found, reading as empty")
			return emptyReader{}, nil
		}
		return nil, fmt.Errorf("failed to inspect queue %q: %w", name, err)
	}
	return &reader{conn: c.conn, queue: name, receiveCh: ch}, nil
}

// IsClosed reports whether the AMQP connection is gone. Channel errors such as a
// missing queue leave it open.
func (c *Client) IsClosed() bool {
	return c.conn.IsClosed()
}

func (c *Client) Close(ctx context.Context) error {
	if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	return nil
}

func isNotFound(err error) bool {
	var amqpErr *amqp.Error
	return errors.As(err, &amqpErr) && amqpErr.Code == amqp.NotFound
}
