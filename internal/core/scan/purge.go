package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
)

const (
	PurgeBatchSize = 100
	PurgeMaxWait   = time.Second
)

// Purge drains a view by receiving batches and acknowledging every message.
// It stops at the first empty batch. An acknowledgment failure aborts the purge and
// returns the number acknowledged before it. Cancellation is checked before each batch
// and is not a failure: the partial count is returned with a nil error.
func Purge(ctx context.Context, reader broker.PageReader) (uint64, error) {
	var purged uint64
	for {
		if ctx.Err() != nil {
			return purged, nil
		}
		batch, err := reader.ReceivePage(ctx, PurgeBatchSize, PurgeMaxWait)
		if err != nil {
			if ctx.Err() != nil {
				return purged, nil
			}
			return purged, err
		}
		if len(batch) == 0 {
			return purged, nil
		}
		for _, d := range batch {
			if err := d.Ack(ctx); err != nil {
				if ctx.Err() != nil {
					return purged, nil
				}
				return purged, fmt.Errorf("acknowledge message %q (sequence %d): %w",
					d.Message.MessageID, d.Message.SequenceNumber, err)
			}
			purged++
		}
	}
}
