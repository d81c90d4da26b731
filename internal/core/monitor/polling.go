package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/rs/zerolog/log"
)

// pollCycle is one armed ticker plus the goroutine serving it, bound to one queue.
type pollCycle struct {
	queue    string
	interval time.Duration
	ticker   *time.Ticker
	cancel   context.CancelFunc
	done     chan struct{}
}

// StartPolling stops the running polling cycle, if any, publishes a snapshot of queue
// right away and then every interval until StopPolling. At most one cycle is alive.
//
// The immediate fetch is bound to ctx; if ctx ends first, polling is not started.
func (s *Service) StartPolling(ctx context.Context, queue string, interval time.Duration) error {
	if err := broker.ValidateQueueName(queue); err != nil {
		return err
	}
	if interval <= 0 {
		return broker.Validation("start polling", fmt.Errorf("interval must be positive, got %s", interval))
	}

	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	s.stopLocked()
	if s.isClosed() {
		return broker.Transport("start polling", broker.ErrClientClosed)
	}

	cycleCtx, cancel := context.WithCancel(context.Background())
	fetchCtx, stopFetch := context.WithCancel(cycleCtx)
	stopAfter := context.AfterFunc(ctx, stopFetch)
	m := s.FetchMetrics(fetchCtx, queue)
	stopAfter()
	stopFetch()
	if ctx.Err() != nil {
		cancel()
		return broker.Transport("start polling", ctx.Err())
	}
	s.publish(m)

	c := &pollCycle{
		queue:    queue,
		interval: interval,
		ticker:   time.NewTicker(interval),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.cycle = c
	go s.run(cycleCtx, c)

	log.Info().Str("queue", queue).Dur("interval", interval).Msg("Polling started")
	return nil
}

// ChangeQueue moves polling to another queue. The previous cycle is fully stopped
// before the first snapshot of the new queue is published.
func (s *Service) ChangeQueue(ctx context.Context, queue string, interval time.Duration) error {
	return s.StartPolling(ctx, queue, interval)
}

// StopPolling cancels the running cycle and waits for it to exit. Once it returns no
// snapshot of that cycle will be published. Calling it while idle is a no-op.
func (s *Service) StopPolling() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	s.stopLocked()
}

func (s *Service) stopLocked() {
	c := s.cycle
	if c == nil {
		return
	}
	s.cycle = nil
	c.cancel()
	<-c.done
	c.ticker.Stop()
	log.Info().Str("queue", c.queue).Msg("Polling stopped")
}

// PollingTarget returns the queue being polled, and false when idle.
func (s *Service) PollingTarget() (string, bool) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	if s.cycle == nil {
		return "", false
	}
	return s.cycle.queue, true
}

func (s *Service) run(ctx context.Context, c *pollCycle) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ticker.C:
			m := s.FetchMetrics(ctx, c.queue)
			if ctx.Err() != nil {
				return
			}
			if !m.Healthy() {
				log.Warn().Str("queue", c.queue).Str("error", m.Error).Msg("Metrics poll failed")
			} else {
				log.Debug().
					Str("queue", c.queue).
					Uint64("active", m.ActiveCount).
					Uint64("dead_letter", m.DeadLetterCount).
					Msg("Metrics polled")
			}
			s.publish(m)
		}
	}
}
