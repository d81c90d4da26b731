package broker

import (
	"context"
	"errors"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/models"
)

// View selects which part of a queue a reader is scoped to.
type View int

const (
	ViewMain View = iota
	ViewDeadLetter
)

func (v View) String() string {
	switch v {
	case ViewMain:
		return "main"
	case ViewDeadLetter:
		return "dead-letter"
	default:
		return "unknown"
	}
}

// PageReader reads pages of messages from one view of one queue.
type PageReader interface {
	// PeekPage returns up to pageSize messages with a sequence number greater than
	// afterSequence (from the head when nil) without changing the queue.
	PeekPage(ctx context.Context, pageSize int, afterSequence *int64) ([]models.PeekedMessage, error)
	// ReceivePage locks up to batchSize messages, waiting at most maxWait for the first one.
	// An empty result means nothing arrived within the wait window. Each delivery must be
	// acknowledged to be removed from the queue.
	ReceivePage(ctx context.Context, batchSize int, maxWait time.Duration) ([]Delivery, error)
	// Close releases the reader; unacknowledged deliveries return to the queue.
	Close(ctx context.Context) error
}

// DepthReporter is implemented by readers whose broker reports the number of messages
// in a view without handing them out.
type DepthReporter interface {
	Depth(ctx context.Context) (uint64, error)
}

// ConnectionState is implemented by clients that can report whether their underlying
// connection is gone. A failed OpenReader on a client that is still open leaves the
// connection usable.
type ConnectionState interface {
	IsClosed() bool
}

// Acknowledger settles a single received message.
type Acknowledger interface {
	Ack(ctx context.Context) error
}

// Delivery is a message received in lock mode, pending acknowledgment.
type Delivery struct {
	Message      models.PeekedMessage
	Acknowledger Acknowledger
}

var errNoAcknowledger = errors.New("delivery has no acknowledger")

// Ack removes the delivered message from its queue.
func (d Delivery) Ack(ctx context.Context) error {
	if d.Acknowledger == nil {
		return errNoAcknowledger
	}
	return d.Acknowledger.Ack(ctx)
}

// Client is a connection to a broker, shared by every operation of the process.
type Client interface {
	OpenReader(ctx context.Context, queue string, view View) (PageReader, error)
	Close(ctx context.Context) error
}

// Options tune a transport when it is dialed.
type Options struct {
	// DeadLetterSuffix names the dead-letter queue of transports without a native
	// dead-letter sub-queue (queue name + suffix).
	DeadLetterSuffix string
	// ConnectionName identifies this process to the broker where supported.
	ConnectionName string
}

// Dialer opens a Client for a connection target.
type Dialer func(ctx context.Context, target string, opts Options) (Client, error)
