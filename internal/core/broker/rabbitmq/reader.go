package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const receiveBackoff = 100 * time.Millisecond

// browse is an open browsing channel and the position of the last message it got.
type browse struct {
	ch  *amqp.Channel
	pos int64
}

type reader struct {
	conn  *amqp.Connection
	queue string

	browse    *browse
	receiveCh *amqp.Channel
}

// Depth is the number of ready messages reported by a passive queue.declare. Messages
// delivered to consumers and not yet acknowledged are not included.
func (r *reader) Depth(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q, err := r.receiveCh.QueueDeclarePassive(r.queue, false, false, false, false, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect queue %q: %w", r.queue, err)
	}
	return uint64(q.Messages), nil
}

// PeekPage continues the current browse when afterSequence is where it stopped and
// starts a new one otherwise, skipping the first afterSequence messages.
func (r *reader) PeekPage(ctx context.Context, pageSize int, afterSequence *int64) ([]models.PeekedMessage, error) {
	var after int64
	if afterSequence != nil {
		after = *afterSequence
	}
	if r.browse == nil || afterSequence == nil || after != r.browse.pos {
		if err := r.restartBrowse(); err != nil {
			return nil, err
		}
	}

	page := make([]models.PeekedMessage, 0, pageSize)
	for len(page) < pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, ok, err := r.browse.ch.Get(r.queue, false)
		if err != nil {
			return nil, fmt.Errorf("failed to browse queue %q: %w", r.queue, err)
		}
		if !ok {
			break
		}
		r.browse.pos++
		if r.browse.pos <= after {
			continue
		}
		page = append(page, toPeeked(d, r.browse.pos))
	}
	return page, nil
}

func (r *reader) restartBrowse() error {
	if r.browse != nil {
		closeChannel(r.browse.ch)
		r.browse = nil
	}
	ch, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open browse channel: %w", err)
	}
	r.browse = &browse{ch: ch}
	return nil
}

func (r *reader) ReceivePage(ctx context.Context, batchSize int, maxWait time.Duration) ([]broker.Delivery, error) {
	deadline := time.Now().Add(maxWait)
	batch := make([]broker.Delivery, 0, batchSize)
	for len(batch) < batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, ok, err := r.receiveCh.Get(r.queue, false)
		if err != nil {
			return nil, fmt.Errorf("failed to receive from queue %q: %w", r.queue, err)
		}
		if ok {
			batch = append(batch, broker.Delivery{
				Message:      toPeeked(d, int64(d.DeliveryTag)),
				Acknowledger: acknowledger{delivery: d},
			})
			continue
		}
		if len(batch) > 0 || !time.Now().Before(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(receiveBackoff):
		}
	}
	return batch, nil
}

// Close closes both channels, which returns every unacknowledged message to the queue.
func (r *reader) Close(ctx context.Context) error {
	if r.browse != nil {
		closeChannel(r.browse.ch)
		r.browse = nil
	}
	if r.receiveCh != nil {
		closeChannel(r.receiveCh)
		r.receiveCh = nil
	}
	return nil
}

func closeChannel(ch *amqp.Channel) {
	if err := ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		log.Debug().Err(err).Msg("Failed to close AMQP channel")
	}
}

type acknowledger struct {
	delivery amqp.Delivery
}

func (a acknowledger) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.delivery.Ack(false)
}

// emptyReader stands in for a dead-letter queue that does not exist.
type emptyReader struct{}

func (emptyReader) PeekPage(context.Context, int, *int64) ([]models.PeekedMessage, error) {
	return []models.PeekedMessage{}, nil
}

func (emptyReader) ReceivePage(context.Context, int, time.Duration) ([]broker.Delivery, error) {
	return []broker.Delivery{}, nil
}

func (emptyReader) Depth(context.Context) (uint64, error) {
	return 0, nil
}

func (emptyReader) Close(context.Context) error {
	return nil
}

// toPeeked maps a delivery to a message summary. The subject comes from a "subject"
// header when present, else the routing key.
func toPeeked(d amqp.Delivery, seq int64) models.PeekedMessage {
	subject := d.RoutingKey
	if v, ok := d.Headers["subject"]; ok {
		subject = fmt.Sprint(v)
	}
	var props map[string]string
	if len(d.Headers) > 0 {
		props = make(map[string]string, len(d.Headers))
		for k, v := range d.Headers {
			props[k] = fmt.Sprint(v)
		}
	}
	return models.PeekedMessage{
		Subject:        subject,
		MessageID:      d.MessageId,
		SequenceNumber: seq,
		ContentType:    d.ContentType,
		EnqueuedAt:     d.Timestamp,
		Size:           len(d.Body),
		Body:           d.Body,
		Properties:     props,
	}
}
