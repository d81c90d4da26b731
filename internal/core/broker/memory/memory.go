// Package memory is an in-process broker emulator with sequence-numbered queues and
// dead-letter sub-queues. It backs the memory:// connection target and the tests.
package memory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/models"
)

func init() {
	broker.Register("memory", Dial)
}

// Fault injects failures into one view of one queue.
type Fault struct {
	// OpenErr fails OpenReader while the client stays connected, like a missing queue.
	OpenErr    error
	PeekErr    error
	ReceiveErr error
	AckErr     error
	// AckFailAfter lets that many acknowledgments succeed before AckErr is returned.
	AckFailAfter int
	// StallPeek makes every peek ignore afterSequence and return the head of the view,
	// the non-advancing page some emulators produce.
	StallPeek bool
}

type entry struct {
	msg    models.PeekedMessage
	locked bool
}

type view struct {
	entries []*entry
	fault   Fault
	acks    int
}

type queue struct {
	main       view
	deadLetter view
}

// Broker holds the emulated queues. It is safe for concurrent use.
type Broker struct {
	mu      sync.Mutex
	queues  map[string]*queue
	nextSeq int64
	now     func() time.Time

	peeks    int
	receives int
}

func New() *Broker {
	return &Broker{
		queues: make(map[string]*queue),
		now:    time.Now,
	}
}

var (
	sharedMu sync.Mutex
	shared   = make(map[string]*Broker)
)

// Shared returns the process-wide broker registered under name, creating it if absent.
func Shared(name string) *Broker {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	b, ok := shared[name]
	if !ok {
		b = New()
		shared[name] = b
	}
	return b
}

// Dial connects to the shared broker named by the target host. A target such as
// memory://demo?queue=orders&active=25&deadletter=3 seeds that queue when the named
// broker is first created.
func Dial(ctx context.Context, target string, opts broker.Options) (broker.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid memory target: %w", err)
	}
	sharedMu.Lock()
	b, existed := shared[u.Host]
	if !existed {
		b = New()
		shared[u.Host] = b
	}
	sharedMu.Unlock()
	if !existed {
		if err := seedFromQuery(b, u.Query()); err != nil {
			return nil, err
		}
	}
	return b.Client(), nil
}

func seedFromQuery(b *Broker, q url.Values) error {
	name := q.Get("queue")
	if name == "" {
		return nil
	}
	active, err := queryInt(q, "active")
	if err != nil {
		return err
	}
	dead, err := queryInt(q, "deadletter")
	if err != nil {
		return err
	}
	b.Seed(name, active, dead)
	return nil
}

func queryInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid memory target parameter %s=%q", key, v)
	}
	return n, nil
}

func (b *Broker) queue(name string) *queue {
	q, ok := b.queues[name]
	if !ok {
		q = &queue{}
		b.queues[name] = q
	}
	return q
}

func (b *Broker) view(name string, v broker.View) *view {
	q := b.queue(name)
	if v == broker.ViewDeadLetter {
		return &q.deadLetter
	}
	return &q.main
}

// Send appends messages to the main view of queue, assigning sequence numbers.
func (b *Broker) Send(queue string, msgs ...models.PeekedMessage) {
	b.append(queue, broker.ViewMain, msgs)
}

// SendDeadLetter appends messages to the dead-letter view of queue.
func (b *Broker) SendDeadLetter(queue string, msgs ...models.PeekedMessage) {
	b.append(queue, broker.ViewDeadLetter, msgs)
}

func (b *Broker) append(queue string, v broker.View, msgs []models.PeekedMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	vw := b.view(queue, v)
	for _, m := range msgs {
		b.nextSeq++
		m.SequenceNumber = b.nextSeq
		if m.EnqueuedAt.IsZero() {
			m.EnqueuedAt = b.now().UTC()
		}
		if m.MessageID == "" {
			m.MessageID = fmt.Sprintf("msg-%d", m.SequenceNumber)
		}
		m.Size = len(m.Body)
		vw.entries = append(vw.entries, &entry{msg: m})
	}
}

// Seed fills queue with generated messages.
func (b *Broker) Seed(queue string, active, deadLetter int) {
	b.Send(queue, generate(queue, "active", active)...)
	b.SendDeadLetter(queue, generate(queue, "dead-letter", deadLetter)...)
}

func generate(queue, kind string, n int) []models.PeekedMessage {
	msgs := make([]models.PeekedMessage, n)
	for i := range msgs {
		msgs[i] = models.PeekedMessage{
			Subject:     fmt.Sprintf("%s-%s-%d", queue, kind, i+1),
			ContentType: "application/json",
			Body:        []byte(fmt.Sprintf(`{"n":%d}`, i+1)),
			Properties:  map[string]string{"source": "emulator"},
		}
	}
	return msgs
}

// Count returns the number of messages held by a view, locked ones included.
func (b *Broker) Count(queue string, v broker.View) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.view(queue, v).entries)
}

// SetFault replaces the fault injected into a view.
func (b *Broker) SetFault(queue string, v broker.View, f Fault) {
	b.mu.Lock()
	defer b.mu.Unlock()
	vw := b.view(queue, v)
	vw.fault = f
	vw.acks = 0
}

// Stats returns how many peek and receive calls the broker served.
func (b *Broker) Stats() (peeks, receives int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peeks, b.receives
}

// Client returns a new connection to the broker.
func (b *Broker) Client() *Client {
	return &Client{broker: b}
}
