package metrics

import (
	"sync"
	"time"
)

// MockCollector is a simple mock implementation of MetricsCollector for testing.
// It records every call for later assertions.
type MockCollector struct {
	mu sync.RWMutex

	Snapshots  []MockSnapshot
	Purges     map[string]uint64 // "queue/view" -> count
	Operations map[string]int    // "operation/outcome" -> count
	trends     map[string]*QueueTrend

	enabled bool
}

type MockSnapshot struct {
	QueueName  string
	Active     uint64
	DeadLetter uint64
	Healthy    bool
	CapturedAt time.Time
}

// NewMockCollector creates a new mock collector.
func NewMockCollector() *MockCollector {
	return &MockCollector{
		Purges:     make(map[string]uint64),
		Operations: make(map[string]int),
		trends:     make(map[string]*QueueTrend),
		enabled:    true,
	}
}

func (m *MockCollector) RecordSnapshot(queueName string, active, deadLetter uint64, healthy bool, capturedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots = append(m.Snapshots, MockSnapshot{
		QueueName:  queueName,
		Active:     active,
		DeadLetter: deadLetter,
		Healthy:    healthy,
		CapturedAt: capturedAt,
	})
}

func (m *MockCollector) RecordPurge(queueName, view string, count uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Purges[queueName+"/"+view] += count
}

func (m *MockCollector) RecordOperation(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Operations[operation+"/"+outcome]++
}

// SetQueueTrend sets the trend returned for a queue
func (m *MockCollector) SetQueueTrend(trend *QueueTrend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trends[trend.Name] = trend
}

func (m *MockCollector) GetQueueTrend(queueName string) *QueueTrend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trends[queueName]
}

func (m *MockCollector) RemoveQueue(queueName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.trends, queueName)
}

// SnapshotCount returns how many snapshots were recorded for a queue
func (m *MockCollector) SnapshotCount(queueName string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, s := range m.Snapshots {
		if s.QueueName == queueName {
			n++
		}
	}
	return n
}

// OperationCount returns how many times an operation ended with outcome
func (m *MockCollector) OperationCount(operation, outcome string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Operations[operation+"/"+outcome]
}

// PurgeCount returns the messages recorded as purged from a queue view
func (m *MockCollector) PurgeCount(queueName, view string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.Purges[queueName+"/"+view]
}

func (m *MockCollector) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots = nil
	m.Purges = make(map[string]uint64)
	m.Operations = make(map[string]int)
	m.trends = make(map[string]*QueueTrend)
}

func (m *MockCollector) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Ensure MockCollector implements MetricsCollector
var _ MetricsCollector = (*MockCollector)(nil)
