// Package coordinator sequences the user operations against the monitor and turns their
// results into InspectorState changes.
package coordinator

import (
	"context"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/models"
	"github.com/andrelcunha/otterwatch/internal/core/monitor"
	"github.com/andrelcunha/otterwatch/internal/core/state"
	"github.com/andrelcunha/otterwatch/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPeekCount = 10
	DefaultInterval  = 5 * time.Second
)

type Status string

const (
	StatusCompleted            Status = metrics.OutcomeCompleted
	StatusConfirmationRequired Status = metrics.OutcomeConfirmationRequired
	StatusFailed               Status = metrics.OutcomeFailed
)

// Result reports the outcome of one operation. Kind is set only when Status is failed.
type Result struct {
	Status  Status
	Kind    broker.Kind
	Message string
	Metrics *models.QueueMetrics
}

// Monitor is the part of monitor.Service the coordinator drives.
type Monitor interface {
	OnMetricsUpdated(monitor.MetricsObserver)
	RefreshMetrics(ctx context.Context, queue string) models.QueueMetrics
	PeekMessages(ctx context.Context, queue string, max int) (monitor.PeekResult, error)
	PurgeQueue(ctx context.Context, queue string) (monitor.PurgeResult, error)
	StartPolling(ctx context.Context, queue string, interval time.Duration) error
	ChangeQueue(ctx context.Context, queue string, interval time.Duration) error
}

type Options struct {
	// Collector supplies the fill/drain trend. It should be the collector the monitor
	// records into.
	Collector metrics.MetricsCollector
	PeekCount int
	Interval  time.Duration
	Now       func() time.Time
}

// Coordinator runs one operation at a time; further calls wait for the running one to
// finish or for their context to end. Metrics published by the monitor are applied
// without waiting.
type Coordinator struct {
	monitor   Monitor
	state     *state.InspectorState
	collector metrics.MetricsCollector
	peekCount int
	now       func() time.Time

	inFlight chan struct{}

	// guarded by inFlight
	interval   time.Duration
	resetQueue string
}

func New(m Monitor, s *state.InspectorState, opts Options) *Coordinator {
	if opts.Collector == nil {
		opts.Collector = metrics.NewCollector(&metrics.Config{Enabled: false})
	}
	if opts.PeekCount <= 0 {
		opts.PeekCount = DefaultPeekCount
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Coordinator{
		monitor:   m,
		state:     s,
		collector: opts.Collector,
		peekCount: opts.PeekCount,
		interval:  opts.Interval,
		now:       opts.Now,
		inFlight:  make(chan struct{}, 1),
	}
	m.OnMetricsUpdated(c.HandleMetrics)
	return c
}

// State returns the view model the coordinator writes to.
func (c *Coordinator) State() *state.InspectorState {
	return c.state
}

// HandleMetrics applies a published snapshot. Snapshots of a queue other than the
// current one are dropped.
func (c *Coordinator) HandleMetrics(m models.QueueMetrics) {
	if c.state.Snapshot().CurrentQueueName != m.QueueName {
		log.Debug().Str("queue", m.QueueName).Msg("Dropping metrics of a previous queue")
		return
	}
	trend := c.trendOf(m.QueueName)
	c.state.Apply(func(s *state.Snapshot) {
		if s.CurrentQueueName != m.QueueName {
			return
		}
		state.WithMetrics(m, trend)(s)
	})
}

func (c *Coordinator) trendOf(queue string) state.Trend {
	t := c.collector.GetQueueTrend(queue)
	if t == nil {
		return state.Trend{}
	}
	return state.Trend{ActiveRate: t.ActiveRate, DeadLetterRate: t.DeadLetterRate}
}

// acquire waits for the operation slot.
func (c *Coordinator) acquire(ctx context.Context) error {
	select {
	case c.inFlight <- struct{}{}:
		return nil
	case <-ctx.Done():
		return broker.Transport("wait for running operation", ctx.Err())
	}
}

func (c *Coordinator) release() {
	<-c.inFlight
}

type operation struct {
	name   string
	logger zerolog.Logger
	start  time.Time
}

func (c *Coordinator) begin(name, queue string) *operation {
	op := &operation{
		name: name,
		logger: log.With().
			Str("operation_id", uuid.NewString()).
			Str("operation", name).
			Str("queue", queue).
			Logger(),
		start: time.Now(),
	}
	op.logger.Debug().Msg("Operation started")
	return op
}

func (c *Coordinator) finish(op *operation, res Result) Result {
	c.collector.RecordOperation(op.name, string(res.Status))
	ev := op.logger.Info()
	if res.Status == StatusFailed {
		ev = op.logger.Warn().Str("kind", string(res.Kind))
	}
	ev.Str("outcome", string(res.Status)).
		Dur("elapsed", time.Since(op.start)).
		Msg(res.Message)
	return res
}

func failed(err error) Result {
	return Result{Status: StatusFailed, Kind: broker.KindOf(err), Message: broker.Classify(err)}
}

// Start begins polling the current queue and loads its first page of messages. A
// missing queue name is published as a permanently errored snapshot.
func (c *Coordinator) Start(ctx context.Context) Result {
	queue := c.state.Snapshot().CurrentQueueName
	op := c.begin("start", queue)
	if err := c.acquire(ctx); err != nil {
		return c.finish(op, failed(err))
	}
	defer c.release()

	if err := broker.ValidateQueueName(queue); err != nil {
		m := models.QueueMetrics{
			QueueName:  queue,
			Error:      broker.Classify(err),
			ErrorKind:  string(broker.KindOf(err)),
			CapturedAt: c.now(),
		}
		c.state.Apply(state.WithMetrics(m, state.Trend{}))
		res := failed(err)
		res.Metrics = &m
		return c.finish(op, res)
	}
	if err := c.monitor.StartPolling(ctx, queue, c.interval); err != nil {
		c.state.Apply(state.WithWarning(broker.Classify(err)))
		return c.finish(op, failed(err))
	}
	return c.finish(op, c.peek(ctx, queue, c.peekCount))
}

// RefreshMetrics fetches and publishes metrics of the current queue outside the
// polling cadence.
func (c *Coordinator) RefreshMetrics(ctx context.Context) Result {
	queue := c.state.Snapshot().CurrentQueueName
	op := c.begin("refresh", queue)
	if err := c.acquire(ctx); err != nil {
		return c.finish(op, failed(err))
	}
	defer c.release()

	m := c.monitor.RefreshMetrics(ctx, queue)
	return c.finish(op, metricsResult(m))
}

func metricsResult(m models.QueueMetrics) Result {
	if m.Healthy() {
		return Result{Status: StatusCompleted, Message: "Metrics refreshed", Metrics: &m}
	}
	return Result{Status: StatusFailed, Kind: broker.Kind(m.ErrorKind), Message: m.Error, Metrics: &m}
}
