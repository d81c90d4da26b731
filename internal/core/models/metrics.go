package models

import "time"

// QueueMetrics is an immutable snapshot of one queue's depth, captured by a single
// metrics fetch. When Error is set the counts are best-effort partial values.
type QueueMetrics struct {
	QueueName       string    `json:"queue_name"`
	ActiveCount     uint64    `json:"active_count"`
	DeadLetterCount uint64    `json:"dead_letter_count"`
	ScheduledCount  uint64    `json:"scheduled_count"` // not available from the transports, always 0
	SizeBytes       uint64    `json:"size_bytes"`      // not available from the transports, always 0
	CapturedAt      time.Time `json:"captured_at"`
	Error           string    `json:"error,omitempty"`
	// ErrorKind is the broker.Kind of Error.
	ErrorKind string `json:"error_kind,omitempty"`
}

// Healthy reports whether the snapshot was captured without error.
func (m QueueMetrics) Healthy() bool {
	return m.Error == ""
}

// PeekedMessage is a summary of a message read from a queue view.
// Which view it came from is implied by the list holding it.
type PeekedMessage struct {
	Subject        string            `json:"subject"`
	MessageID      string            `json:"message_id"`
	SequenceNumber int64             `json:"sequence_number"`
	ContentType    string            `json:"content_type"`
	EnqueuedAt     time.Time         `json:"enqueued_at"`
	Size           int               `json:"size"`
	Body           []byte            `json:"body"`
	Properties     map[string]string `json:"properties,omitempty"`
}
