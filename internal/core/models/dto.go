package models

import "time"

// StateDTO is the JSON view of the inspector state served to UI clients.
type StateDTO struct {
	Version          uint64          `json:"version"`
	CurrentQueueName string          `json:"current_queue_name"`
	Metrics          MetricsDTO      `json:"metrics"`
	Generation       uint64          `json:"generation"`
	MainMessages     []PeekedMessage `json:"main_messages"`
	DeadLetters      []PeekedMessage `json:"dead_letter_messages"`
	SelectedIndex    *int            `json:"selected_index,omitempty"`
	PeekError        string          `json:"peek_error,omitempty"`
	WarningMessage   string          `json:"warning_message,omitempty"`
	SuccessMessage   string          `json:"success_message,omitempty"`
	ConfirmingReset  bool            `json:"confirming_reset"`
}

type MetricsDTO struct {
	QueueMetrics
	Healthy        bool    `json:"healthy"`
	ActiveRate     float64 `json:"active_rate"`      // messages per second, positive when filling
	DeadLetterRate float64 `json:"dead_letter_rate"` // messages per second, positive when filling
}

type HealthDTO struct {
	Healthy    bool      `json:"healthy"`
	QueueName  string    `json:"queue_name"`
	CapturedAt time.Time `json:"captured_at"`
	Error      string    `json:"error,omitempty"`
}

type OperationDTO struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Metrics *QueueMetrics `json:"metrics,omitempty"`
}
