package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/models"
)

var errLockLost = errors.New("message lock lost")

type Client struct {
	broker *Broker

	mu     sync.Mutex
	closed bool
}

var (
	_ broker.Client          = (*Client)(nil)
	_ broker.ConnectionState = (*Client)(nil)
)

func (c *Client) OpenReader(ctx context.Context, queue string, v broker.View) (broker.PageReader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.IsClosed() {
		return nil, broker.ErrClientClosed
	}
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.view(queue, v).fault.OpenErr; err != nil {
		return nil, err
	}
	return &reader{client: c, queue: queue, view: v}, nil
}

func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Client) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type reader struct {
	client *Client
	queue  string
	view   broker.View
	locked []*entry
}

func (r *reader) PeekPage(ctx context.Context, pageSize int, afterSequence *int64) ([]models.PeekedMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.client.IsClosed() {
		return nil, broker.ErrClientClosed
	}
	b := r.client.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	b.peeks++

	vw := b.view(r.queue, r.view)
	if vw.fault.PeekErr != nil {
		return nil, vw.fault.PeekErr
	}
	after := int64(-1)
	if afterSequence != nil && !vw.fault.StallPeek {
		after = *afterSequence
	}
	page := make([]models.PeekedMessage, 0, pageSize)
	for _, e := range vw.entries {
		if len(page) == pageSize {
			break
		}
		if e.msg.SequenceNumber > after {
			page = append(page, e.msg)
		}
	}
	return page, nil
}

func (r *reader) ReceivePage(ctx context.Context, batchSize int, maxWait time.Duration) ([]broker.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.client.IsClosed() {
		return nil, broker.ErrClientClosed
	}
	b := r.client.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	b.receives++

	vw := b.view(r.queue, r.view)
	if vw.fault.ReceiveErr != nil {
		return nil, vw.fault.ReceiveErr
	}
	batch := make([]broker.Delivery, 0, batchSize)
	for _, e := range vw.entries {
		if len(batch) == batchSize {
			break
		}
		if e.locked {
			continue
		}
		e.locked = true
		r.locked = append(r.locked, e)
		batch = append(batch, broker.Delivery{
			Message:      e.msg,
			Acknowledger: &ack{reader: r, seq: e.msg.SequenceNumber},
		})
	}
	return batch, nil
}

// Close unlocks every delivery this reader did not acknowledge.
func (r *reader) Close(ctx context.Context) error {
	b := r.client.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range r.locked {
		e.locked = false
	}
	r.locked = nil
	return nil
}

type ack struct {
	reader *reader
	seq    int64
}

func (a *ack) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := a.reader.client.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	vw := b.view(a.reader.queue, a.reader.view)
	if vw.fault.AckErr != nil && vw.acks >= vw.fault.AckFailAfter {
		return vw.fault.AckErr
	}
	for i, e := range vw.entries {
		if e.msg.SequenceNumber == a.seq {
			vw.entries = append(vw.entries[:i], vw.entries[i+1:]...)
			vw.acks++
			return nil
		}
	}
	return errLockLost
}
