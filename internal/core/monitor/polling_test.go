package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/broker/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartPolling_PublishesImmediately(t *testing.T) {
	f := newFixture(t)
	f.broker.Seed("orders", 4, 2)

	require.NoError(t, f.service.StartPolling(context.Background(), "orders", time.Hour))

	got := f.recorder.all()
	require.Len(t, got, 1, "exactly one fetch before the first tick")
	assert.Equal(t, "orders", got[0].QueueName)
	assert.Equal(t, uint64(4), got[0].ActiveCount)
	assert.Equal(t, uint64(2), got[0].DeadLetterCount)

	queue, polling := f.service.PollingTarget()
	assert.True(t, polling)
	assert.Equal(t, "orders", queue)
}

func TestStartPolling_Validation(t *testing.T) {
	f := newFixture(t)

	err := f.service.StartPolling(context.Background(), "", time.Second)
	assert.Equal(t, broker.KindValidation, broker.KindOf(err))

	err = f.service.StartPolling(context.Background(), "orders", 0)
	assert.Equal(t, broker.KindValidation, broker.KindOf(err))

	_, polling := f.service.PollingTarget()
	assert.False(t, polling)
	assert.Zero(t, f.recorder.len())
}

func TestStartPolling_CancelledCallerDoesNotArm(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.service.StartPolling(ctx, "orders", time.Hour)

	assert.Equal(t, broker.KindCancelled, broker.KindOf(err))
	_, polling := f.service.PollingTarget()
	assert.False(t, polling)
	assert.Zero(t, f.recorder.len())
}

func TestPolling_Ticks(t *testing.T) {
	f := newFixture(t)
	f.broker.Seed("orders", 1, 0)

	require.NoError(t, f.service.StartPolling(context.Background(), "orders", 5*time.Millisecond))

	require.Eventually(t, func() bool { return f.recorder.len() >= 4 }, 2*time.Second, time.Millisecond)
	for _, m := range f.recorder.all() {
		assert.Equal(t, "orders", m.QueueName)
	}
}

func TestPolling_ContinuesThroughErrors(t *testing.T) {
	f := newFixture(t)
	f.broker.Seed("orders", 1, 0)
	f.broker.SetFault("orders", broker.ViewMain, memory.Fault{PeekErr: errors.New("unreachable")})

	require.NoError(t, f.service.StartPolling(context.Background(), "orders", 5*time.Millisecond))
	require.Eventually(t, func() bool { return f.recorder.len() >= 3 }, 2*time.Second, time.Millisecond)

	for _, m := range f.recorder.all() {
		assert.False(t, m.Healthy())
		assert.Contains(t, m.Error, "unreachable")
	}

	f.broker.SetFault("orders", broker.ViewMain, memory.Fault{})
	require.Eventually(t, func() bool {
		all := f.recorder.all()
		return all[len(all)-1].Healthy()
	}, 2*time.Second, time.Millisecond)
}

func TestStopPolling_NoPublishAfterReturn(t *testing.T) {
	f := newFixture(t)
	f.broker.Seed("orders", 1, 0)

	require.NoError(t, f.service.StartPolling(context.Background(), "orders", time.Millisecond))
	require.Eventually(t, func() bool { return f.recorder.len() >= 2 }, 2*time.Second, time.Millisecond)

	f.service.StopPolling()
	stopped := f.recorder.len()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, stopped, f.recorder.len())
	_, polling := f.service.PollingTarget()
	assert.False(t, polling)

	f.service.StopPolling()
}

func TestChangeQueue_OldTargetNeverPublishedAfterwards(t *testing.T) {
	f := newFixture(t)
	f.broker.Seed("orders", 1, 0)
	f.broker.Seed("invoices", 2, 0)

	require.NoError(t, f.service.StartPolling(context.Background(), "orders", time.Millisecond))
	require.Eventually(t, func() bool { return f.recorder.len() >= 3 }, 2*time.Second, time.Millisecond)

	require.NoError(t, f.service.ChangeQueue(context.Background(), "invoices", time.Millisecond))
	mark := f.recorder.len()
	f.service.StopPolling()
	stopped := f.recorder.len()

	all := f.recorder.all()
	require.Greater(t, mark, 0)
	assert.Equal(t, "invoices", all[mark-1].QueueName, "first snapshot after the switch is the new queue")
	for _, m := range all[mark-1:] {
		assert.Equal(t, "invoices", m.QueueName)
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, f.recorder.len())
}

func TestStartPolling_ReplacesRunningCycle(t *testing.T) {
	f := newFixture(t)
	f.broker.Seed("orders", 1, 0)

	require.NoError(t, f.service.StartPolling(context.Background(), "orders", time.Hour))
	require.NoError(t, f.service.StartPolling(context.Background(), "orders", time.Hour))

	assert.Equal(t, 2, f.recorder.len())
	queue, polling := f.service.PollingTarget()
	assert.True(t, polling)
	assert.Equal(t, "orders", queue)
}
