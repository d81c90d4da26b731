package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeekPage_AfterSequence(t *testing.T) {
	b := New()
	b.Seed("orders", 5, 0)
	r, err := b.Client().OpenReader(context.Background(), "orders", broker.ViewMain)
	require.NoError(t, err)

	first, err := r.PeekPage(context.Background(), 3, nil)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, int64(1), first[0].SequenceNumber)

	after := first[2].SequenceNumber
	rest, err := r.PeekPage(context.Background(), 3, &after)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, int64(4), rest[0].SequenceNumber)

	assert.Equal(t, 5, b.Count("orders", broker.ViewMain), "peek must not consume")
}

func TestPeekPage_StallIgnoresCursor(t *testing.T) {
	b := New()
	b.Seed("orders", 4, 0)
	b.SetFault("orders", broker.ViewMain, Fault{StallPeek: true})
	r, _ := b.Client().OpenReader(context.Background(), "orders", broker.ViewMain)

	after := int64(2)
	page, err := r.PeekPage(context.Background(), 2, &after)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page[0].SequenceNumber)
}

func TestReceivePage_AckRemovesAndCloseUnlocks(t *testing.T) {
	b := New()
	b.Seed("orders", 0, 3)
	ctx := context.Background()
	r, _ := b.Client().OpenReader(ctx, "orders", broker.ViewDeadLetter)

	batch, err := r.ReceivePage(ctx, 2, time.Second)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	require.NoError(t, batch[0].Ack(ctx))
	assert.Equal(t, 2, b.Count("orders", broker.ViewDeadLetter))

	// The unacknowledged delivery stays locked until the reader closes.
	next, err := r.ReceivePage(ctx, 10, time.Second)
	require.NoError(t, err)
	assert.Len(t, next, 1)

	require.NoError(t, r.Close(ctx))
	again, _ := b.Client().OpenReader(ctx, "orders", broker.ViewDeadLetter)
	all, err := again.ReceivePage(ctx, 10, time.Second)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAckFault(t *testing.T) {
	b := New()
	b.Seed("orders", 3, 0)
	b.SetFault("orders", broker.ViewMain, Fault{AckErr: errors.New("lock expired"), AckFailAfter: 1})
	ctx := context.Background()
	r, _ := b.Client().OpenReader(ctx, "orders", broker.ViewMain)

	batch, err := r.ReceivePage(ctx, 3, time.Second)
	require.NoError(t, err)
	assert.NoError(t, batch[0].Ack(ctx))
	assert.EqualError(t, batch[1].Ack(ctx), "lock expired")
}

func TestClosedClient(t *testing.T) {
	c := New().Client()
	require.NoError(t, c.Close(context.Background()))
	_, err := c.OpenReader(context.Background(), "orders", broker.ViewMain)
	assert.ErrorIs(t, err, broker.ErrClientClosed)
}

func TestDial_SeedsNamedBroker(t *testing.T) {
	c, err := broker.Open(context.Background(), "memory://dial-seed-test?queue=jobs&active=4&deadletter=2", broker.Options{})
	require.NoError(t, err)
	defer c.Close(context.Background())

	b := Shared("dial-seed-test")
	assert.Equal(t, 4, b.Count("jobs", broker.ViewMain))
	assert.Equal(t, 2, b.Count("jobs", broker.ViewDeadLetter))

	_, err = broker.Open(context.Background(), "memory://dial-bad-test?queue=jobs&active=x", broker.Options{})
	assert.Error(t, err)
}
