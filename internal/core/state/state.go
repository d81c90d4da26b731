// Package state holds the inspector view model shared by the coordinator and the
// polling loop, and notifies observers after every committed change.
package state

import (
	"sync"

	"github.com/andrelcunha/otterwatch/internal/core/models"
	"github.com/rs/zerolog/log"
)

// Trend is the fill/drain rate of the monitored queue, in messages per second.
type Trend struct {
	ActiveRate     float64
	DeadLetterRate float64
}

// Selection points at a dead-letter message of one message-list generation.
type Selection struct {
	Generation uint64
	Index      int
}

// Snapshot is a consistent copy of the state. Message slices are replaced wholesale and
// never modified in place, so a Snapshot can share them safely.
type Snapshot struct {
	Version          uint64
	CurrentQueueName string
	Metrics          models.QueueMetrics
	Trend            Trend

	// Generation increases every time the message lists are replaced or cleared.
	Generation         uint64
	MainQueueMessages  []models.PeekedMessage
	DeadLetterMessages []models.PeekedMessage
	Selected           *Selection

	PeekError       string
	WarningMessage  string
	SuccessMessage  string
	ConfirmingReset bool
}

// SelectedMessage resolves the selection against the current dead-letter list.
func (s Snapshot) SelectedMessage() (models.PeekedMessage, bool) {
	if s.Selected == nil || s.Selected.Generation != s.Generation {
		return models.PeekedMessage{}, false
	}
	if s.Selected.Index < 0 || s.Selected.Index >= len(s.DeadLetterMessages) {
		return models.PeekedMessage{}, false
	}
	return s.DeadLetterMessages[s.Selected.Index], true
}

// Observer is notified after each committed change. It re-reads the state through
// Snapshot and must not mutate it from within the callback.
type Observer func()

// InspectorState is the single mutable view model. All writes go through Apply.
type InspectorState struct {
	// notifyMu serializes commit+notify so observers see changes in commit order.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	snap      Snapshot
	observers []*Observer
}

func New(queueName string) *InspectorState {
	return &InspectorState{
		snap: Snapshot{
			CurrentQueueName:   queueName,
			MainQueueMessages:  []models.PeekedMessage{},
			DeadLetterMessages: []models.PeekedMessage{},
		},
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *InspectorState) Subscribe(o Observer) (unsubscribe func()) {
	ref := &o
	s.mu.Lock()
	s.observers = append(s.observers, ref)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, r := range s.observers {
			if r == ref {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns the current state.
func (s *InspectorState) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Apply commits all mutations as one change and notifies every observer once, in
// registration order. Readers never observe a partially applied set.
func (s *InspectorState) Apply(mutations ...Mutation) {
	if len(mutations) == 0 {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	for _, m := range mutations {
		m(&s.snap)
	}
	// A pending confirmation is only meaningful while its prompt is shown.
	if s.snap.ConfirmingReset && s.snap.WarningMessage == "" {
		s.snap.ConfirmingReset = false
	}
	s.snap.Version++
	observers := make([]*Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		(*o)()
	}
}

// LogObserver logs every state change at debug level.
func LogObserver(s *InspectorState) Observer {
	return func() {
		snap := s.Snapshot()
		log.Debug().
			Uint64("version", snap.Version).
			Str("queue", snap.CurrentQueueName).
			Uint64("active", snap.Metrics.ActiveCount).
			Uint64("dead_letter", snap.Metrics.DeadLetterCount).
			Int("main_messages", len(snap.MainQueueMessages)).
			Int("dead_letter_messages", len(snap.DeadLetterMessages)).
			Bool("confirming_reset", snap.ConfirmingReset).
			Msg("Inspector state changed")
	}
}
