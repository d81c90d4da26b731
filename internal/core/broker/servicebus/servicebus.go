// Package servicebus reads Azure Service Bus queues for the monitor. Sequence numbers
// are the broker's own; the dead-letter view is the queue's dead-letter sub-queue.
package servicebus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/models"
	"github.com/rs/zerolog/log"
)

const scheme = "servicebus"

func init() {
	broker.Register(scheme, Dial)
}

type Client struct {
	client *azservicebus.Client
}

var _ broker.Client = (*Client)(nil)

// Dial creates a client from a connection string. The AMQP link is established on
// first use.
func Dial(ctx context.Context, target string, opts broker.Options) (broker.Client, error) {
	if broker.SchemeOf(target) != scheme {
		return nil, errors.New("service bus target must be a connection string starting with Endpoint=")
	}
	c, err := azservicebus.NewClientFromConnectionString(strings.TrimSpace(target), &azservicebus.ClientOptions{
		ApplicationID: opts.ConnectionName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create service bus client: %w", err)
	}
	return &Client{client: c}, nil
}

func (c *Client) OpenReader(ctx context.Context, queue string, view broker.View) (broker.PageReader, error) {
	opts := &azservicebus.ReceiverOptions{ReceiveMode: azservicebus.ReceiveModePeekLock}
	if view == broker.ViewDeadLetter {
		opts.SubQueue = azservicebus.SubQueueDeadLetter
	}
	r, err := c.client.NewReceiverForQueue(queue, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s receiver for %q: %w", view, queue, err)
	}
	return &reader{receiver: r}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

type reader struct {
	receiver *azservicebus.Receiver
}

func (r *reader) PeekPage(ctx context.Context, pageSize int, afterSequence *int64) ([]models.PeekedMessage, error) {
	var opts *azservicebus.PeekMessagesOptions
	if afterSequence != nil {
		// FromSequenceNumber is inclusive.
		from := *afterSequence + 1
		opts = &azservicebus.PeekMessagesOptions{FromSequenceNumber: &from}
	}
	msgs, err := r.receiver.PeekMessages(ctx, pageSize, opts)
	if err != nil {
		return nil, err
	}
	page := make([]models.PeekedMessage, 0, len(msgs))
	for _, m := range msgs {
		page = append(page, toPeeked(m))
	}
	return page, nil
}

// ReceivePage waits up to maxWait for the first message. The SDK returns as soon as
// some messages arrived, so a batch can be smaller than batchSize.
func (r *reader) ReceivePage(ctx context.Context, batchSize int, maxWait time.Duration) ([]broker.Delivery, error) {
	waitCtx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	msgs, err := r.receiver.ReceiveMessages(waitCtx, batchSize, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return []broker.Delivery{}, nil
		}
		return nil, err
	}
	batch := make([]broker.Delivery, 0, len(msgs))
	for _, m := range msgs {
		batch = append(batch, broker.Delivery{
			Message:      toPeeked(m),
			Acknowledger: &completer{receiver: r.receiver, msg: m},
		})
	}
	return batch, nil
}

// Close releases the link. Locked messages become available again when their lock
// expires.
func (r *reader) Close(ctx context.Context) error {
	if err := r.receiver.Close(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to close service bus receiver")
		return err
	}
	return nil
}

type completer struct {
	receiver *azservicebus.Receiver
	msg      *azservicebus.ReceivedMessage
}

func (c *completer) Ack(ctx context.Context) error {
	return c.receiver.CompleteMessage(ctx, c.msg, nil)
}

func toPeeked(m *azservicebus.ReceivedMessage) models.PeekedMessage {
	p := models.PeekedMessage{
		MessageID: m.MessageID,
		Size:      len(m.Body),
		Body:      m.Body,
	}
	if m.Subject != nil {
		p.Subject = *m.Subject
	}
	if m.SequenceNumber != nil {
		p.SequenceNumber = *m.SequenceNumber
	}
	if m.ContentType != nil {
		p.ContentType = *m.ContentType
	}
	if m.EnqueuedTime != nil {
		p.EnqueuedAt = *m.EnqueuedTime
	}
	if len(m.ApplicationProperties) > 0 {
		p.Properties = make(map[string]string, len(m.ApplicationProperties))
		for k, v := range m.ApplicationProperties {
			p.Properties[k] = fmt.Sprint(v)
		}
	}
	return p
}
