// Package monitor owns the broker connection and the background polling of queue
// metrics, and runs the peek and purge operations against the broker.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/models"
	"github.com/andrelcunha/otterwatch/internal/core/scan"
	"github.com/andrelcunha/otterwatch/pkg/metrics"
	"github.com/rs/zerolog/log"
)

const closeTimeout = 5 * time.Second

type Options struct {
	// Target is the opaque connection target handed to Dial.
	Target string
	// Dial opens the connection, broker.Open when nil.
	Dial             broker.Dialer
	DeadLetterSuffix string
	ConnectionName   string
	Collector        metrics.MetricsCollector
	Now              func() time.Time
}

type PeekResult struct {
	Main       []models.PeekedMessage
	DeadLetter []models.PeekedMessage
}

type PurgeResult struct {
	Active     uint64
	DeadLetter uint64
}

// MetricsObserver receives every published metrics snapshot.
type MetricsObserver func(models.QueueMetrics)

// Service is safe for concurrent use. The broker connection is created on first use and
// shared by every operation until Close.
type Service struct {
	opts Options

	connMu sync.Mutex
	client broker.Client
	closed bool

	obsMu     sync.RWMutex
	observers []MetricsObserver

	pollMu sync.Mutex
	cycle  *pollCycle
}

func New(opts Options) *Service {
	if opts.Dial == nil {
		opts.Dial = broker.Open
	}
	if opts.Collector == nil {
		opts.Collector = metrics.NewCollector(&metrics.Config{Enabled: false})
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{opts: opts}
}

// OnMetricsUpdated registers an observer of published snapshots. Observers run on the
// publishing goroutine, in registration order.
func (s *Service) OnMetricsUpdated(o MetricsObserver) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *Service) publish(m models.QueueMetrics) {
	s.opts.Collector.RecordSnapshot(m.QueueName, m.ActiveCount, m.DeadLetterCount, m.Healthy(), m.CapturedAt)

	s.obsMu.RLock()
	observers := make([]MetricsObserver, len(s.observers))
	copy(observers, s.observers)
	s.obsMu.RUnlock()

	for _, o := range observers {
		o(m)
	}
}

// connection returns the shared client, dialing it if absent.
func (s *Service) connection(ctx context.Context) (broker.Client, error) {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.closed {
		return nil, broker.Transport("connect", broker.ErrClientClosed)
	}
	if s.client != nil {
		return s.client, nil
	}

	log.Info().Str("transport", broker.SchemeOf(s.opts.Target)).Msg("Connecting to broker")
	c, err := s.opts.Dial(ctx, s.opts.Target, broker.Options{
		DeadLetterSuffix: s.opts.DeadLetterSuffix,
		ConnectionName:   s.opts.ConnectionName,
	})
	if err != nil {
		return nil, broker.Transport("connect", err)
	}
	s.client = c
	log.Info().Str("transport", broker.SchemeOf(s.opts.Target)).Msg("Connected to broker")
	return c, nil
}

// connectionLost reports whether a failed OpenReader left client unusable. Clients that
// cannot report their connection state are assumed broken.
func connectionLost(client broker.Client, err error) bool {
	if errors.Is(err, broker.ErrClientClosed) {
		return true
	}
	if cs, ok := client.(broker.ConnectionState); ok {
		return cs.IsClosed()
	}
	return true
}

// invalidate drops a client that failed to open a reader so the next operation redials.
func (s *Service) invalidate(c broker.Client) {
	s.connMu.Lock()
	if s.client != c {
		s.connMu.Unlock()
		return
	}
	s.client = nil
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := c.Close(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to close broken broker connection")
	}
	log.Warn().Msg("Broker connection dropped, it will be re-established on next use")
}

func (s *Service) withReader(ctx context.Context, queue string, view broker.View, fn func(broker.PageReader) error) error {
	client, err := s.connection(ctx)
	if err != nil {
		return err
	}
	r, err := client.OpenReader(ctx, queue, view)
	if err != nil {
		if ctx.Err() == nil && connectionLost(client, err) {
			s.invalidate(client)
		}
		return broker.Transport(fmt.Sprintf("open %s reader", view), err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		if err := r.Close(closeCtx); err != nil {
			log.Debug().Err(err).Str("queue", queue).Str("view", view.String()).Msg("Failed to close reader")
		}
	}()
	return fn(r)
}

func (s *Service) estimate(ctx context.Context, queue string, view broker.View) (uint64, error) {
	var count uint64
	err := s.withReader(ctx, queue, view, func(r broker.PageReader) error {
		var err error
		count, err = scan.EstimateDepth(ctx, r)
		return err
	})
	return count, err
}

// FetchMetrics captures a metrics snapshot of queue. It never fails: errors are carried
// by the snapshot together with the counts read before the failure.
func (s *Service) FetchMetrics(ctx context.Context, queue string) models.QueueMetrics {
	m := models.QueueMetrics{QueueName: queue}
	if err := broker.ValidateQueueName(queue); err != nil {
		fail(&m, err)
		m.CapturedAt = s.opts.Now()
		return m
	}

	active, err := s.estimate(ctx, queue, broker.ViewMain)
	m.ActiveCount = active
	if err != nil {
		fail(&m, broker.Transport("count active messages", err))
		m.CapturedAt = s.opts.Now()
		return m
	}

	dead, err := s.estimate(ctx, queue, broker.ViewDeadLetter)
	m.DeadLetterCount = dead
	if err != nil {
		fail(&m, broker.Transport("count dead-letter messages", err))
	}
	m.CapturedAt = s.opts.Now()
	return m
}

func fail(m *models.QueueMetrics, err error) {
	m.Error = broker.Classify(err)
	m.ErrorKind = string(broker.KindOf(err))
}

// RefreshMetrics fetches a snapshot outside the polling cadence and publishes it like a
// polling tick would. Snapshots of cancelled fetches are returned but not published.
func (s *Service) RefreshMetrics(ctx context.Context, queue string) models.QueueMetrics {
	m := s.FetchMetrics(ctx, queue)
	if ctx.Err() == nil {
		s.publish(m)
	}
	return m
}

// PeekMessages reads up to max messages from the main view, then from the dead-letter
// view. Both lists are returned or neither.
func (s *Service) PeekMessages(ctx context.Context, queue string, max int) (PeekResult, error) {
	if err := broker.ValidateQueueName(queue); err != nil {
		return PeekResult{}, err
	}
	if max <= 0 {
		return PeekResult{}, broker.Validation("peek", fmt.Errorf("max messages must be positive, got %d", max))
	}

	var res PeekResult
	err := s.withReader(ctx, queue, broker.ViewMain, func(r broker.PageReader) error {
		var err error
		res.Main, err = r.PeekPage(ctx, max, nil)
		return err
	})
	if err != nil {
		return PeekResult{}, broker.Transport("peek active messages", err)
	}
	err = s.withReader(ctx, queue, broker.ViewDeadLetter, func(r broker.PageReader) error {
		var err error
		res.DeadLetter, err = r.PeekPage(ctx, max, nil)
		return err
	})
	if err != nil {
		return PeekResult{}, broker.Transport("peek dead-letter messages", err)
	}

	if res.Main == nil {
		res.Main = []models.PeekedMessage{}
	}
	if res.DeadLetter == nil {
		res.DeadLetter = []models.PeekedMessage{}
	}
	return res, nil
}

// PurgeQueue drains the main view, then the dead-letter view. The result always holds
// the counts removed so far, including on error.
func (s *Service) PurgeQueue(ctx context.Context, queue string) (PurgeResult, error) {
	if err := broker.ValidateQueueName(queue); err != nil {
		return PurgeResult{}, err
	}

	var res PurgeResult
	err := s.withReader(ctx, queue, broker.ViewMain, func(r broker.PageReader) error {
		var err error
		res.Active, err = scan.Purge(ctx, r)
		return err
	})
	s.opts.Collector.RecordPurge(queue, metrics.ViewMain, res.Active)
	if err != nil {
		return res, broker.Transport("purge active messages", err)
	}

	err = s.withReader(ctx, queue, broker.ViewDeadLetter, func(r broker.PageReader) error {
		var err error
		res.DeadLetter, err = scan.Purge(ctx, r)
		return err
	})
	s.opts.Collector.RecordPurge(queue, metrics.ViewDeadLetter, res.DeadLetter)
	if err != nil {
		return res, broker.Transport("purge dead-letter messages", err)
	}
	if err := ctx.Err(); err != nil {
		return res, broker.Transport("purge", err)
	}

	log.Info().Str("queue", queue).Uint64("active", res.Active).Uint64("dead_letter", res.DeadLetter).Msg("Queue purged")
	return res, nil
}

// Close stops polling, then closes the broker connection. It is idempotent.
func (s *Service) Close(ctx context.Context) error {
	s.StopPolling()

	s.connMu.Lock()
	if s.closed {
		s.connMu.Unlock()
		return nil
	}
	s.closed = true
	c := s.client
	s.client = nil
	s.connMu.Unlock()

	if c == nil {
		return nil
	}
	log.Info().Msg("Closing broker connection")
	return c.Close(ctx)
}

func (s *Service) isClosed() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.closed
}
