package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	ViewMain       = "main"
	ViewDeadLetter = "dead-letter"

	OutcomeCompleted            = "completed"
	OutcomeConfirmationRequired = "confirmation_required"
	OutcomeFailed               = "failed"
)

// Collector aggregates the snapshots published by the polling loop and the results of
// user operations. Trends are computed with RateTrackers; an optional Exporter mirrors
// the values to an external system.
type Collector struct {
	queueMetrics sync.Map

	operations sync.Map // "operation/outcome" -> *atomic.Int64

	config *Config
}

// QueueMetrics tracks statistics for a single monitored queue
type QueueMetrics struct {
	Name            string
	ActiveDepth     *RateTracker
	DeadLetterDepth *RateTracker
	PurgedCount     atomic.Int64 // Cumulative messages removed by purges
	PollErrors      atomic.Int64 // Snapshots captured with an error
	Snapshots       atomic.Int64
	CreatedAt       time.Time
}

// QueueTrend is a point-in-time view of a queue's tracked metrics.
type QueueTrend struct {
	Name            string
	ActiveCount     int64
	DeadLetterCount int64
	ActiveRate      float64 // messages per second, positive when the queue is filling
	DeadLetterRate  float64
	PurgedCount     int64
	PollErrors      int64
	Snapshots       int64
}

// Config holds configuration for metrics collection
type Config struct {
	Enabled    bool          // Enable/disable metrics collection
	WindowSize time.Duration // Time window for rate calculations (e.g., 5 minutes)
	MaxSamples int           // Maximum samples to keep per tracker
	Exporter   Exporter      // Optional external sink, nil to keep metrics in process only
}

// DefaultConfig returns sensible defaults for metrics collection
func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		WindowSize: 5 * time.Minute,
		MaxSamples: 60,
	}
}

// NewCollector creates a new metrics collector with the given configuration
func NewCollector(config *Config) *Collector {
	if config == nil {
		config = DefaultConfig()
	}
	return &Collector{config: config}
}

// RecordSnapshot records the counts of a published metrics snapshot. Unhealthy snapshots
// only count as poll errors, their partial counts would distort the trend.
func (c *Collector) RecordSnapshot(queueName string, active, deadLetter uint64, healthy bool, capturedAt time.Time) {
	if !c.config.Enabled {
		return
	}

	qm := c.getOrCreateQueueMetrics(queueName)
	qm.Snapshots.Add(1)
	if !healthy {
		qm.PollErrors.Add(1)
		if c.config.Exporter != nil {
			c.config.Exporter.IncPollErrors(queueName)
		}
		return
	}
	qm.ActiveDepth.RecordAt(int64(active), capturedAt)
	qm.DeadLetterDepth.RecordAt(int64(deadLetter), capturedAt)

	if c.config.Exporter != nil {
		c.config.Exporter.SetQueueDepth(queueName, ViewMain, active)
		c.config.Exporter.SetQueueDepth(queueName, ViewDeadLetter, deadLetter)
	}
}

// RecordPurge records messages removed from a queue view by a purge
func (c *Collector) RecordPurge(queueName, view string, count uint64) {
	if !c.config.Enabled {
		return
	}

	qm := c.getOrCreateQueueMetrics(queueName)
	qm.PurgedCount.Add(int64(count))
	if c.config.Exporter != nil {
		c.config.Exporter.AddPurged(queueName, view, count)
	}
}

// RecordOperation counts a coordinator operation by outcome
func (c *Collector) RecordOperation(operation, outcome string) {
	if !c.config.Enabled {
		return
	}

	key := operation + "/" + outcome
	value, _ := c.operations.LoadOrStore(key, new(atomic.Int64))
	value.(*atomic.Int64).Add(1)
	if c.config.Exporter != nil {
		c.config.Exporter.IncOperations(operation, outcome)
	}
}

// GetOperationCount returns how many times an operation ended with outcome
func (c *Collector) GetOperationCount(operation, outcome string) int64 {
	if value, ok := c.operations.Load(operation + "/" + outcome); ok {
		return value.(*atomic.Int64).Load()
	}
	return 0
}

// GetQueueMetrics retrieves metrics for a specific queue
func (c *Collector) GetQueueMetrics(queueName string) *QueueMetrics {
	if value, ok := c.queueMetrics.Load(queueName); ok {
		return value.(*QueueMetrics)
	}
	return nil
}

// GetQueueTrend summarizes a queue's metrics, nil when the queue was never recorded
func (c *Collector) GetQueueTrend(queueName string) *QueueTrend {
	qm := c.GetQueueMetrics(queueName)
	if qm == nil {
		return nil
	}
	active, _ := qm.ActiveDepth.Latest()
	dead, _ := qm.DeadLetterDepth.Latest()
	return &QueueTrend{
		Name:            qm.Name,
		ActiveCount:     active,
		DeadLetterCount: dead,
		ActiveRate:      qm.ActiveDepth.Rate(),
		DeadLetterRate:  qm.DeadLetterDepth.Rate(),
		PurgedCount:     qm.PurgedCount.Load(),
		PollErrors:      qm.PollErrors.Load(),
		Snapshots:       qm.Snapshots.Load(),
	}
}

// getOrCreateQueueMetrics gets existing or creates new queue metrics
func (c *Collector) getOrCreateQueueMetrics(name string) *QueueMetrics {
	if value, ok := c.queueMetrics.Load(name); ok {
		return value.(*QueueMetrics)
	}

	qm := &QueueMetrics{
		Name:            name,
		ActiveDepth:     NewRateTracker(c.config.WindowSize, c.config.MaxSamples),
		DeadLetterDepth: NewRateTracker(c.config.WindowSize, c.config.MaxSamples),
		CreatedAt:       time.Now(),
	}

	actual, _ := c.queueMetrics.LoadOrStore(name, qm)
	return actual.(*QueueMetrics)
}

// RemoveQueue removes metrics tracking for a queue
func (c *Collector) RemoveQueue(queueName string) {
	c.queueMetrics.Delete(queueName)
}

// Clear drops every tracked queue and operation counter
func (c *Collector) Clear() {
	c.queueMetrics.Range(func(key, _ any) bool {
		c.queueMetrics.Delete(key)
		return true
	})
	c.operations.Range(func(key, _ any) bool {
		c.operations.Delete(key)
		return true
	})
}

func (c *Collector) IsEnabled() bool {
	return c.config.Enabled
}
