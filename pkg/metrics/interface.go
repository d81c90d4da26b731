package metrics

import "time"

// MetricsCollector is the interface for metrics collection in otterwatch.
// This interface allows for easy mocking in tests.
type MetricsCollector interface {
	// Queue metrics
	RecordSnapshot(queueName string, active, deadLetter uint64, healthy bool, capturedAt time.Time)
	RecordPurge(queueName, view string, count uint64)
	GetQueueTrend(queueName string) *QueueTrend
	RemoveQueue(queueName string)

	// Operations
	RecordOperation(operation, outcome string)

	// Utility
	Clear()
	IsEnabled() bool
}

// Exporter publishes collected values to an external monitoring system.
type Exporter interface {
	SetQueueDepth(queueName, view string, depth uint64)
	AddPurged(queueName, view string, count uint64)
	IncPollErrors(queueName string)
	IncOperations(operation, outcome string)
}

// Ensure Collector implements MetricsCollector
var _ MetricsCollector = (*Collector)(nil)
