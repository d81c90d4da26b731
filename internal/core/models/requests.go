package models

// Queue fields other than ChangeQueueRequest's are optional: an empty value targets the
// queue currently monitored.

type PeekRequest struct {
	Queue       string `json:"queue"`
	MaxMessages int    `json:"max_messages"`
}

type ResetQueueRequest struct {
	Queue string `json:"queue"`
}

type ChangeQueueRequest struct {
	Queue           string `json:"queue" validate:"required"`
	IntervalSeconds int    `json:"interval_seconds"` // <= 0 keeps the configured interval
}

type SelectMessageRequest struct {
	Index *int `json:"index"` // nil clears the selection
}
