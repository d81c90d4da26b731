package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/state"
)

const (
	resetPrompt   = "Purge all messages from '%s' (active and dead-letter)? Press reset again to confirm."
	resetDone     = "Purged %d active and %d dead-letter messages from '%s'"
	resetStopped  = "Purge of '%s' stopped after %d active and %d dead-letter messages: %s"
	changeDone    = "Now monitoring '%s'"
	peekCompleted = "Peeked %d active and %d dead-letter messages"
)

// Peek replaces both message lists with the first messages of queue. On failure the
// lists are left untouched and the peek error is set. max <= 0 uses the configured
// peek count.
func (c *Coordinator) Peek(ctx context.Context, queue string, max int) Result {
	op := c.begin("peek", queue)
	if err := c.acquire(ctx); err != nil {
		return c.finish(op, failed(err))
	}
	defer c.release()

	if max <= 0 {
		max = c.peekCount
	}
	return c.finish(op, c.peek(ctx, queue, max))
}

func (c *Coordinator) peek(ctx context.Context, queue string, max int) Result {
	c.state.Apply(state.WithPeekError(""))

	res, err := c.monitor.PeekMessages(ctx, queue, max)
	if err != nil {
		c.state.Apply(state.WithPeekError(broker.Classify(err)))
		return failed(err)
	}
	c.state.Apply(state.WithMessages(res.Main, res.DeadLetter))
	return Result{
		Status:  StatusCompleted,
		Message: fmt.Sprintf(peekCompleted, len(res.Main), len(res.DeadLetter)),
	}
}

// ResetQueue is the two-click purge. The first call only arms the confirmation. A
// second call for the same queue, with nothing clearing the confirmation in between,
// purges both views once; either outcome disarms the confirmation again.
func (c *Coordinator) ResetQueue(ctx context.Context, queue string) Result {
	op := c.begin("reset", queue)
	if err := c.acquire(ctx); err != nil {
		return c.finish(op, failed(err))
	}
	defer c.release()

	if err := broker.ValidateQueueName(queue); err != nil {
		c.state.Apply(state.ClearConfirmation(), state.WithWarning(broker.Classify(err)))
		return c.finish(op, failed(err))
	}

	if !c.state.Snapshot().ConfirmingReset || c.resetQueue != queue {
		prompt := fmt.Sprintf(resetPrompt, queue)
		c.resetQueue = queue
		c.state.Apply(state.RequestConfirmation(prompt))
		return c.finish(op, Result{Status: StatusConfirmationRequired, Message: prompt})
	}
	c.resetQueue = ""

	purged, err := c.monitor.PurgeQueue(ctx, queue)
	if err != nil {
		msg := fmt.Sprintf(resetStopped, queue, purged.Active, purged.DeadLetter, broker.Classify(err))
		c.state.Apply(state.ClearConfirmation(), state.WithWarning(msg))
		res := failed(err)
		res.Message = msg
		if purged.Active+purged.DeadLetter > 0 {
			m := c.monitor.RefreshMetrics(ctx, queue)
			res.Metrics = &m
		}
		return c.finish(op, res)
	}

	msg := fmt.Sprintf(resetDone, purged.Active, purged.DeadLetter, queue)
	c.state.Apply(state.ClearMessages(), state.ClearConfirmation(), state.WithSuccess(msg))
	m := c.monitor.RefreshMetrics(ctx, queue)
	return c.finish(op, Result{Status: StatusCompleted, Message: msg, Metrics: &m})
}

// ChangeQueue switches monitoring to queue. Messages, status text and any pending
// confirmation are cleared first; once polling has moved, the new queue is peeked.
// interval <= 0 keeps the current polling interval.
func (c *Coordinator) ChangeQueue(ctx context.Context, queue string, interval time.Duration) Result {
	op := c.begin("change_queue", queue)
	if err := c.acquire(ctx); err != nil {
		return c.finish(op, failed(err))
	}
	defer c.release()

	c.resetQueue = ""
	if err := broker.ValidateQueueName(queue); err != nil {
		c.state.Apply(state.ClearConfirmation(), state.WithWarning(broker.Classify(err)))
		return c.finish(op, failed(err))
	}
	if interval > 0 {
		c.interval = interval
	}

	previous := c.state.Snapshot().CurrentQueueName
	c.state.Apply(
		state.WithQueueName(queue),
		state.ClearMessages(),
		state.ClearStatus(),
		state.ClearConfirmation(),
	)
	if err := c.monitor.ChangeQueue(ctx, queue, c.interval); err != nil {
		c.state.Apply(state.WithWarning(broker.Classify(err)))
		return c.finish(op, failed(err))
	}
	if previous != queue {
		// the old cycle has stopped, nothing records into its trend anymore
		c.collector.RemoveQueue(previous)
	}

	res := Result{Status: StatusCompleted, Message: fmt.Sprintf(changeDone, queue)}
	if peeked := c.peek(ctx, queue, c.peekCount); peeked.Status == StatusFailed {
		res.Message += "; " + peeked.Message
	}
	m := c.state.Snapshot().Metrics
	res.Metrics = &m
	return c.finish(op, res)
}
