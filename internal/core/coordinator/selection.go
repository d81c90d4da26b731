package coordinator

import (
	"context"
	"fmt"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/state"
)

// SelectMessage selects the dead-letter message at index in the current list. Any
// pending reset confirmation is cleared first.
func (c *Coordinator) SelectMessage(ctx context.Context, index int) Result {
	snap := c.state.Snapshot()
	op := c.begin("select", snap.CurrentQueueName)
	if err := c.acquire(ctx); err != nil {
		return c.finish(op, failed(err))
	}
	defer c.release()

	c.resetQueue = ""
	snap = c.state.Snapshot()
	if index < 0 || index >= len(snap.DeadLetterMessages) {
		err := broker.Validation("select message",
			fmt.Errorf("no dead-letter message at index %d (%d peeked)", index, len(snap.DeadLetterMessages)))
		c.state.Apply(state.ClearConfirmation(), state.ClearSelection())
		return c.finish(op, failed(err))
	}
	c.state.Apply(state.ClearConfirmation(), state.Select(index))
	return c.finish(op, Result{Status: StatusCompleted, Message: fmt.Sprintf("Selected dead-letter message %d", index)})
}

func (c *Coordinator) ClearSelection(ctx context.Context) Result {
	op := c.begin("clear_selection", c.state.Snapshot().CurrentQueueName)
	if err := c.acquire(ctx); err != nil {
		return c.finish(op, failed(err))
	}
	defer c.release()

	c.resetQueue = ""
	c.state.Apply(state.ClearConfirmation(), state.ClearSelection())
	return c.finish(op, Result{Status: StatusCompleted, Message: "Selection cleared"})
}

// CancelReset disarms a pending reset confirmation.
func (c *Coordinator) CancelReset(ctx context.Context) Result {
	op := c.begin("cancel_reset", c.state.Snapshot().CurrentQueueName)
	if err := c.acquire(ctx); err != nil {
		return c.finish(op, failed(err))
	}
	defer c.release()

	c.resetQueue = ""
	c.state.Apply(state.ClearConfirmation())
	return c.finish(op, Result{Status: StatusCompleted, Message: "Reset cancelled"})
}
