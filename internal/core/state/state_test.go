package state

import (
	"sync"
	"testing"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgs(ids ...string) []models.PeekedMessage {
	out := make([]models.PeekedMessage, len(ids))
	for i, id := range ids {
		out[i] = models.PeekedMessage{MessageID: id, SequenceNumber: int64(i + 1)}
	}
	return out
}

func TestNew_StartsWithEmptyLists(t *testing.T) {
	s := New("orders")
	snap := s.Snapshot()

	assert.Equal(t, "orders", snap.CurrentQueueName)
	assert.NotNil(t, snap.MainQueueMessages)
	assert.NotNil(t, snap.DeadLetterMessages)
	assert.Empty(t, snap.MainQueueMessages)
	assert.False(t, snap.ConfirmingReset)
	assert.Zero(t, snap.Version)
}

func TestApply_NotifiesOncePerCommitInRegistrationOrder(t *testing.T) {
	s := New("orders")
	var calls []string
	s.Subscribe(func() { calls = append(calls, "first") })
	s.Subscribe(func() { calls = append(calls, "second") })

	s.Apply(WithMessages(msgs("a"), msgs("b")), WithSuccess("done"), ClearConfirmation())

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, uint64(1), s.Snapshot().Version)

	s.Apply()
	assert.Len(t, calls, 2, "an empty Apply is not a change")
}

func TestUnsubscribe(t *testing.T) {
	s := New("orders")
	count := 0
	unsubscribe := s.Subscribe(func() { count++ })
	s.Apply(WithPeekError("x"))
	unsubscribe()
	s.Apply(WithPeekError("y"))

	assert.Equal(t, 1, count)
}

func TestWithMessages_NewGenerationInvalidatesSelection(t *testing.T) {
	s := New("orders")
	s.Apply(WithMessages(msgs("m1"), msgs("d1", "d2")))
	s.Apply(Select(1))

	selected, ok := s.Snapshot().SelectedMessage()
	require.True(t, ok)
	assert.Equal(t, "d2", selected.MessageID)

	s.Apply(WithMessages(msgs("m1"), msgs("d3", "d4")))
	snap := s.Snapshot()
	assert.Nil(t, snap.Selected)
	_, ok = snap.SelectedMessage()
	assert.False(t, ok)
	assert.Equal(t, uint64(2), snap.Generation)
}

func TestSelectedMessage_StaleGeneration(t *testing.T) {
	snap := Snapshot{
		Generation:         3,
		DeadLetterMessages: msgs("d1"),
		Selected:           &Selection{Generation: 2, Index: 0},
	}
	_, ok := snap.SelectedMessage()
	assert.False(t, ok)

	snap.Selected = &Selection{Generation: 3, Index: 5}
	_, ok = snap.SelectedMessage()
	assert.False(t, ok)
}

func TestWithMessages_NilBecomesEmpty(t *testing.T) {
	s := New("orders")
	s.Apply(WithMessages(nil, msgs("d1")))

	snap := s.Snapshot()
	assert.NotNil(t, snap.MainQueueMessages)
	assert.Empty(t, snap.MainQueueMessages)
	assert.Len(t, snap.DeadLetterMessages, 1)
}

func TestConfirmation_RequiresPrompt(t *testing.T) {
	s := New("orders")
	s.Apply(RequestConfirmation("Press reset again"))
	snap := s.Snapshot()
	assert.True(t, snap.ConfirmingReset)
	assert.Equal(t, "Press reset again", snap.WarningMessage)

	// Removing the prompt disarms the confirmation.
	s.Apply(ClearStatus())
	snap = s.Snapshot()
	assert.False(t, snap.ConfirmingReset)
	assert.Empty(t, snap.WarningMessage)
}

func TestClearConfirmation_KeepsUnrelatedWarning(t *testing.T) {
	s := New("orders")
	s.Apply(WithWarning("transport: unreachable"))
	s.Apply(ClearConfirmation())

	assert.Equal(t, "transport: unreachable", s.Snapshot().WarningMessage)
}

func TestApply_ObserversNeverSeeTornLists(t *testing.T) {
	s := New("orders")
	var mu sync.Mutex
	var torn bool
	s.Subscribe(func() {
		snap := s.Snapshot()
		if len(snap.MainQueueMessages) != len(snap.DeadLetterMessages) {
			mu.Lock()
			torn = true
			mu.Unlock()
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				ids := make([]string, n)
				s.Apply(WithMessages(msgs(ids...), msgs(ids...)))
				s.Apply(WithMetrics(models.QueueMetrics{CapturedAt: time.Now()}, Trend{}))
			}
		}(i)
	}
	wg.Wait()

	assert.False(t, torn)
	assert.Equal(t, uint64(800), s.Snapshot().Version)
}
