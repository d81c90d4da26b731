package metrics

import (
	"sync"
	"time"
)

// RateTracker keeps a sliding window of samples of a value and derives its rate of change.
type RateTracker struct {
	mu         sync.RWMutex
	samples    []Sample
	windowSize time.Duration
	maxSamples int
}

type Sample struct {
	Value     int64
	Timestamp time.Time
}

func NewRateTracker(windowSize time.Duration, maxSamples int) *RateTracker {
	return &RateTracker{
		samples:    make([]Sample, 0, maxSamples),
		windowSize: windowSize,
		maxSamples: maxSamples,
	}
}

func (rt *RateTracker) Record(value int64) {
	rt.RecordAt(value, time.Now())
}

// RecordAt adds a sample taken at the given time. Samples older than the window,
// relative to the newest one, are dropped.
func (rt *RateTracker) RecordAt(value int64, at time.Time) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.samples = append(rt.samples, Sample{
		Value:     value,
		Timestamp: at,
	})

	cutoff := at.Add(-rt.windowSize)
	drop := 0
	for drop < len(rt.samples)-1 && !rt.samples[drop].Timestamp.After(cutoff) {
		drop++
	}
	if len(rt.samples)-drop > rt.maxSamples {
		drop = len(rt.samples) - rt.maxSamples
	}
	if drop > 0 {
		n := copy(rt.samples, rt.samples[drop:])
		rt.samples = rt.samples[:n]
	}
}

// Rate computes the change per second between the oldest and newest samples.
// Negative values mean the tracked value is decreasing.
func (rt *RateTracker) Rate() float64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	if len(rt.samples) < 2 {
		return 0.0
	}

	oldest := rt.samples[0]
	newest := rt.samples[len(rt.samples)-1]

	elapsed := newest.Timestamp.Sub(oldest.Timestamp).Seconds()
	if elapsed <= 0 {
		return 0.0
	}
	return float64(newest.Value-oldest.Value) / elapsed
}

// Latest returns the newest sample value, and false when nothing was recorded.
func (rt *RateTracker) Latest() (int64, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	if len(rt.samples) == 0 {
		return 0, false
	}
	return rt.samples[len(rt.samples)-1].Value, true
}

func (rt *RateTracker) GetSamples() []Sample {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	samplesCopy := make([]Sample, len(rt.samples))
	copy(samplesCopy, rt.samples)
	return samplesCopy
}

func (rt *RateTracker) Clear() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.samples = rt.samples[:0]
}
