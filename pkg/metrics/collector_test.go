package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordSnapshotBuildsTrend(t *testing.T) {
	c := NewCollector(nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c.RecordSnapshot("orders", 100, 4, true, base)
	c.RecordSnapshot("orders", 80, 6, true, base.Add(10*time.Second))

	trend := c.GetQueueTrend("orders")
	if trend == nil {
		t.Fatal("expected trend for orders")
	}
	if trend.ActiveCount != 80 || trend.DeadLetterCount != 6 {
		t.Errorf("expected latest counts 80/6, got %d/%d", trend.ActiveCount, trend.DeadLetterCount)
	}
	if trend.ActiveRate != -2 {
		t.Errorf("expected active rate -2/s, got %f", trend.ActiveRate)
	}
	if trend.DeadLetterRate != 0.2 {
		t.Errorf("expected dead-letter rate 0.2/s, got %f", trend.DeadLetterRate)
	}
	if trend.Snapshots != 2 {
		t.Errorf("expected 2 snapshots, got %d", trend.Snapshots)
	}
}

func TestCollector_UnhealthySnapshotCountsAsPollError(t *testing.T) {
	c := NewCollector(nil)
	c.RecordSnapshot("orders", 0, 0, false, time.Now())

	trend := c.GetQueueTrend("orders")
	if trend.PollErrors != 1 {
		t.Errorf("expected 1 poll error, got %d", trend.PollErrors)
	}
	if trend.ActiveCount != 0 || trend.ActiveRate != 0 {
		t.Errorf("unhealthy snapshot must not feed the trend")
	}
}

func TestCollector_Disabled(t *testing.T) {
	c := NewCollector(&Config{Enabled: false})
	c.RecordSnapshot("orders", 1, 1, true, time.Now())
	c.RecordPurge("orders", ViewMain, 10)
	c.RecordOperation("peek", OutcomeCompleted)

	if c.GetQueueTrend("orders") != nil {
		t.Errorf("disabled collector must not track queues")
	}
	if c.GetOperationCount("peek", OutcomeCompleted) != 0 {
		t.Errorf("disabled collector must not count operations")
	}
	if c.IsEnabled() {
		t.Errorf("expected IsEnabled false")
	}
}

func TestCollector_PurgeAndOperations(t *testing.T) {
	c := NewCollector(nil)
	c.RecordPurge("orders", ViewMain, 10)
	c.RecordPurge("orders", ViewDeadLetter, 5)
	c.RecordOperation("reset", OutcomeConfirmationRequired)
	c.RecordOperation("reset", OutcomeCompleted)
	c.RecordOperation("reset", OutcomeCompleted)

	if got := c.GetQueueTrend("orders").PurgedCount; got != 15 {
		t.Errorf("expected 15 purged, got %d", got)
	}
	if got := c.GetOperationCount("reset", OutcomeCompleted); got != 2 {
		t.Errorf("expected 2 completed resets, got %d", got)
	}

	c.Clear()
	if c.GetQueueTrend("orders") != nil || c.GetOperationCount("reset", OutcomeCompleted) != 0 {
		t.Errorf("expected Clear to drop everything")
	}
}

func TestCollector_RemoveQueue(t *testing.T) {
	c := NewCollector(nil)
	c.RecordSnapshot("orders", 1, 0, true, time.Now())
	c.RemoveQueue("orders")

	if c.GetQueueTrend("orders") != nil {
		t.Errorf("expected orders to be removed")
	}
}

func TestCollector_ExportsToPrometheus(t *testing.T) {
	exp := NewPrometheusExporter()
	cfg := DefaultConfig()
	cfg.Exporter = exp
	c := NewCollector(cfg)

	c.RecordSnapshot("orders", 42, 3, true, time.Now())
	c.RecordSnapshot("orders", 0, 0, false, time.Now())
	c.RecordPurge("orders", ViewDeadLetter, 3)
	c.RecordOperation("peek", OutcomeFailed)

	if got := testutil.ToFloat64(exp.queueDepth.WithLabelValues("orders", ViewMain)); got != 42 {
		t.Errorf("expected main depth gauge 42, got %f", got)
	}
	if got := testutil.ToFloat64(exp.queueDepth.WithLabelValues("orders", ViewDeadLetter)); got != 3 {
		t.Errorf("expected dead-letter depth gauge 3, got %f", got)
	}
	if got := testutil.ToFloat64(exp.pollErrorsTotal.WithLabelValues("orders")); got != 1 {
		t.Errorf("expected 1 poll error, got %f", got)
	}
	if got := testutil.ToFloat64(exp.messagesPurged.WithLabelValues("orders", ViewDeadLetter)); got != 3 {
		t.Errorf("expected 3 purged, got %f", got)
	}
	if got := testutil.ToFloat64(exp.operationsTotal.WithLabelValues("peek", OutcomeFailed)); got != 1 {
		t.Errorf("expected 1 failed peek, got %f", got)
	}
}
