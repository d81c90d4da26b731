package metrics

import (
	"sync"
	"testing"
	"time"
)

// ========================================
// Constructor Tests
// ========================================

func TestRateTracker_Constructor(t *testing.T) {
	windowSize := 5 * time.Second
	maxSamples := 100
	rt := NewRateTracker(windowSize, maxSamples)

	if rt.windowSize != windowSize {
		t.Errorf("expected windowSize %v, got %v", windowSize, rt.windowSize)
	}
	if rt.maxSamples != maxSamples {
		t.Errorf("expected maxSamples %d, got %d", maxSamples, rt.maxSamples)
	}
	if len(rt.samples) != 0 || cap(rt.samples) != maxSamples {
		t.Errorf("expected empty samples slice with capacity %d", maxSamples)
	}
}

// ========================================
// Recording & Pruning Tests
// ========================================

func TestRateTracker_PrunesOutsideWindow(t *testing.T) {
	rt := NewRateTracker(10*time.Second, 100)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rt.RecordAt(10, base)
	rt.RecordAt(20, base.Add(5*time.Second))
	rt.RecordAt(30, base.Add(12*time.Second))

	samples := rt.GetSamples()
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples after pruning, got %d", len(samples))
	}
	if samples[0].Value != 20 {
		t.Errorf("expected oldest remaining sample 20, got %d", samples[0].Value)
	}
}

func TestRateTracker_CapsAtMaxSamples(t *testing.T) {
	rt := NewRateTracker(time.Hour, 5)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		rt.RecordAt(int64(i), base.Add(time.Duration(i)*time.Second))
	}

	samples := rt.GetSamples()
	if len(samples) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(samples))
	}
	if samples[0].Value != 7 || samples[4].Value != 11 {
		t.Errorf("expected samples 7..11, got %d..%d", samples[0].Value, samples[4].Value)
	}
}

func TestRateTracker_KeepsNewestSampleAfterLongGap(t *testing.T) {
	rt := NewRateTracker(time.Second, 10)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rt.RecordAt(1, base)
	rt.RecordAt(2, base.Add(time.Minute))

	if got, ok := rt.Latest(); !ok || got != 2 {
		t.Errorf("expected latest 2, got %d (ok=%v)", got, ok)
	}
	if len(rt.GetSamples()) != 1 {
		t.Errorf("expected only the newest sample to remain")
	}
}

// ========================================
// Rate Tests
// ========================================

func TestRateTracker_Rate(t *testing.T) {
	rt := NewRateTracker(time.Minute, 60)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if rate := rt.Rate(); rate != 0 {
		t.Errorf("expected 0 rate with no samples, got %f", rate)
	}

	rt.RecordAt(100, base)
	rt.RecordAt(150, base.Add(10*time.Second))
	if rate := rt.Rate(); rate != 5 {
		t.Errorf("expected rate 5/s, got %f", rate)
	}

	rt.RecordAt(50, base.Add(20*time.Second))
	if rate := rt.Rate(); rate != -2.5 {
		t.Errorf("expected draining rate -2.5/s, got %f", rate)
	}
}

func TestRateTracker_ZeroElapsed(t *testing.T) {
	rt := NewRateTracker(time.Minute, 60)
	now := time.Now()
	rt.RecordAt(1, now)
	rt.RecordAt(9, now)

	if rate := rt.Rate(); rate != 0 {
		t.Errorf("expected 0 rate for identical timestamps, got %f", rate)
	}
}

func TestRateTracker_Clear(t *testing.T) {
	rt := NewRateTracker(time.Minute, 60)
	rt.Record(3)
	rt.Clear()

	if _, ok := rt.Latest(); ok {
		t.Errorf("expected no samples after Clear")
	}
}

// ========================================
// Concurrency Tests
// ========================================

func TestRateTracker_ConcurrentRecord(t *testing.T) {
	rt := NewRateTracker(time.Minute, 1000)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rt.Record(int64(n*50 + j))
				_ = rt.Rate()
			}
		}(i)
	}
	wg.Wait()

	if len(rt.GetSamples()) != 500 {
		t.Errorf("expected 500 samples, got %d", len(rt.GetSamples()))
	}
}
