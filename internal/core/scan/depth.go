// Package scan counts and drains queue views page by page through a broker.PageReader.
package scan

import (
	"context"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/rs/zerolog/log"
)

const (
	// PageSize is the number of messages requested per peek.
	PageSize = 100
	// DepthCeiling caps EstimateDepth. A result equal to it is a lower bound.
	DepthCeiling = 10000
)

// EstimateDepth counts the messages of a view with non-destructive paged reads.
//
// Counting stops at the first empty page, at a page that does not advance past the
// previous one, at DepthCeiling, or at a short page. A non-advancing page is not an
// error: the total read before it is returned. On failure the partial total is
// returned with the error. Readers that report their depth are asked directly, capped
// at DepthCeiling.
func EstimateDepth(ctx context.Context, reader broker.PageReader) (uint64, error) {
	if dr, ok := reader.(broker.DepthReporter); ok {
		depth, err := dr.Depth(ctx)
		if err != nil {
			return 0, err
		}
		return min(depth, DepthCeiling), nil
	}

	var (
		total   uint64
		after   *int64
		lastSeq int64
	)
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		page, err := reader.PeekPage(ctx, PageSize, after)
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			return total, nil
		}
		if after != nil && page[0].SequenceNumber <= lastSeq {
			log.Debug().
				Int64("last_sequence", lastSeq).
				Int64("page_first_sequence", page[0].SequenceNumber).
				Uint64("total", total).
				Msg("Peek did not advance, stopping depth count")
			return total, nil
		}
		total += uint64(len(page))
		if total >= DepthCeiling {
			return DepthCeiling, nil
		}
		if len(page) < PageSize {
			return total, nil
		}
		lastSeq = page[len(page)-1].SequenceNumber
		next := lastSeq
		after = &next
	}
}
