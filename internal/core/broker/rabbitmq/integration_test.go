package rabbitmq

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/scan"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokerURL returns the broker used by the integration tests, skipping when unset.
func brokerURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("OTTERWATCH_E2E_AMQP_URL")
	if url == "" {
		t.Skip("OTTERWATCH_E2E_AMQP_URL not set")
	}
	return url
}

// testQueue declares an auto-delete queue and its dead-letter queue and publishes to them.
type testQueue struct {
	t    *testing.T
	conn *amqp.Connection
	ch   *amqp.Channel
	name string
}

func newTestQueue(t *testing.T, url string) *testQueue {
	t.Helper()
	conn, err := amqp.Dial(url)
	require.NoError(t, err, "failed to connect to broker")
	ch, err := conn.Channel()
	require.NoError(t, err, "failed to open channel")

	q := &testQueue{t: t, conn: conn, ch: ch, name: "otterwatch-test-" + uuid.NewString()}
	for _, name := range []string{q.name, q.name + DefaultDeadLetterSuffix} {
		_, err := ch.QueueDeclare(
			name,
			false, // durable
			true,  // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		require.NoError(t, err, "failed to declare queue %s", name)
	}
	t.Cleanup(func() {
		ch.QueueDelete(q.name, false, false, false)
		ch.QueueDelete(q.name+DefaultDeadLetterSuffix, false, false, false)
		ch.Close()
		conn.Close()
	})
	return q
}

func (q *testQueue) publish(queue string, count int) {
	for i := 0; i < count; i++ {
		err := q.ch.PublishWithContext(
			context.Background(),
			"",    // exchange
			queue, // routing key
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType: "text/plain",
				MessageId:   fmt.Sprintf("msg-%d", i),
				Body:        []byte(fmt.Sprintf("Message %d", i)),
			},
		)
		require.NoError(q.t, err, "failed to publish message %d", i)
	}
}

func TestIntegration_EstimatePeekPurge(t *testing.T) {
	url := brokerURL(t)
	q := newTestQueue(t, url)
	q.publish(q.name, 130)
	q.publish(q.name+DefaultDeadLetterSuffix, 3)
	time.Sleep(200 * time.Millisecond)

	ctx := context.Background()
	client, err := Dial(ctx, url, broker.Options{ConnectionName: "otterwatch-integration"})
	require.NoError(t, err)
	defer client.Close(ctx)

	main, err := client.OpenReader(ctx, q.name, broker.ViewMain)
	require.NoError(t, err)
	depth, err := scan.EstimateDepth(ctx, main)
	require.NoError(t, err)
	require.NoError(t, main.Close(ctx))
	assert.Equal(t, uint64(130), depth)

	main, err = client.OpenReader(ctx, q.name, broker.ViewMain)
	require.NoError(t, err)
	page, err := main.PeekPage(ctx, 10, nil)
	require.NoError(t, err)
	require.NoError(t, main.Close(ctx))
	require.Len(t, page, 10)
	assert.Equal(t, "msg-0", page[0].MessageID)
	assert.Equal(t, int64(1), page[0].SequenceNumber)

	dead, err := client.OpenReader(ctx, q.name, broker.ViewDeadLetter)
	require.NoError(t, err)
	purged, err := scan.Purge(ctx, dead)
	require.NoError(t, err)
	require.NoError(t, dead.Close(ctx))
	assert.Equal(t, uint64(3), purged)

	main, err = client.OpenReader(ctx, q.name, broker.ViewMain)
	require.NoError(t, err)
	purged, err = scan.Purge(ctx, main)
	require.NoError(t, err)
	require.NoError(t, main.Close(ctx))
	assert.Equal(t, uint64(130), purged, "peeked messages must have been returned to the queue")
}

func TestIntegration_MissingDeadLetterQueueIsEmpty(t *testing.T) {
	url := brokerURL(t)
	ctx := context.Background()
	client, err := Dial(ctx, url, broker.Options{DeadLetterSuffix: ".missing-" + uuid.NewString()})
	require.NoError(t, err)
	defer client.Close(ctx)

	r, err := client.OpenReader(ctx, "otterwatch-absent", broker.ViewDeadLetter)
	require.NoError(t, err)
	depth, err := scan.EstimateDepth(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), depth)

	_, err = client.OpenReader(ctx, "otterwatch-absent-"+uuid.NewString(), broker.ViewMain)
	assert.Error(t, err)
	assert.False(t, client.(broker.ConnectionState).IsClosed(), "a missing queue only closes its channel")
}
