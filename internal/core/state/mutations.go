package state

import "github.com/andrelcunha/otterwatch/internal/core/models"

// Mutation changes a draft of the state inside Apply.
type Mutation func(*Snapshot)

func WithQueueName(name string) Mutation {
	return func(s *Snapshot) {
		s.CurrentQueueName = name
	}
}

// WithMetrics replaces the metrics snapshot and its trend.
func WithMetrics(m models.QueueMetrics, t Trend) Mutation {
	return func(s *Snapshot) {
		s.Metrics = m
		s.Trend = t
	}
}

// WithMessages replaces both message lists, starting a new generation. Nil lists are
// stored as empty ones.
func WithMessages(main, deadLetter []models.PeekedMessage) Mutation {
	return func(s *Snapshot) {
		if main == nil {
			main = []models.PeekedMessage{}
		}
		if deadLetter == nil {
			deadLetter = []models.PeekedMessage{}
		}
		s.MainQueueMessages = main
		s.DeadLetterMessages = deadLetter
		s.Generation++
		s.Selected = nil
	}
}

// ClearMessages empties both message lists, starting a new generation.
func ClearMessages() Mutation {
	return WithMessages(nil, nil)
}

func WithPeekError(msg string) Mutation {
	return func(s *Snapshot) {
		s.PeekError = msg
	}
}

func WithWarning(msg string) Mutation {
	return func(s *Snapshot) {
		s.WarningMessage = msg
		s.SuccessMessage = ""
	}
}

func WithSuccess(msg string) Mutation {
	return func(s *Snapshot) {
		s.SuccessMessage = msg
		s.WarningMessage = ""
	}
}

// ClearStatus clears the peek error and both status messages.
func ClearStatus() Mutation {
	return func(s *Snapshot) {
		s.PeekError = ""
		s.WarningMessage = ""
		s.SuccessMessage = ""
	}
}

// RequestConfirmation arms the reset confirmation with its prompt.
func RequestConfirmation(prompt string) Mutation {
	return func(s *Snapshot) {
		s.ConfirmingReset = true
		s.WarningMessage = prompt
		s.SuccessMessage = ""
	}
}

// ClearConfirmation disarms the reset confirmation and removes its prompt.
func ClearConfirmation() Mutation {
	return func(s *Snapshot) {
		if s.ConfirmingReset {
			s.WarningMessage = ""
		}
		s.ConfirmingReset = false
	}
}

// Select points the selection at a dead-letter message of the current generation.
func Select(index int) Mutation {
	return func(s *Snapshot) {
		s.Selected = &Selection{Generation: s.Generation, Index: index}
	}
}

func ClearSelection() Mutation {
	return func(s *Snapshot) {
		s.Selected = nil
	}
}
