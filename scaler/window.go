package scaler

import (
	"sync"
	"time"
)

// ArrivalWindow tracks request arrival timestamps over a sliding time
// window and estimates the current arrival rate in requests per second.
//
// The window is append-only at the newest end and pruned lazily from the
// oldest end on every estimate; after a prune, every retained arrival is
// at most the window length old. All access is serialized by an internal
// mutex so concurrent request handlers cannot corrupt the ordering.
type ArrivalWindow struct {
	mu       sync.Mutex
	length   time.Duration
	arrivals []time.Time
	now      func() time.Time // injectable clock for tests
}

// NewArrivalWindow creates an empty window of the given length.
func NewArrivalWindow(length time.Duration) *ArrivalWindow {
	return &ArrivalWindow{
		length: length,
		now:    time.Now,
	}
}

// RecordAndEstimate appends one arrival at the current time, prunes
// expired entries and returns the resulting rate estimate.
func (w *ArrivalWindow) RecordAndEstimate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.arrivals = append(w.arrivals, now)
	return w.estimateLocked(now)
}

// Estimate prunes expired entries and computes the rate without
// recording a new arrival. Used by status queries.
func (w *ArrivalWindow) Estimate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.estimateLocked(w.now())
}

// Len reports the number of retained arrivals without pruning.
func (w *ArrivalWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.arrivals)
}

// estimateLocked prunes arrivals older than the window length and
// returns (n-1)/span: n arrivals delimit n-1 inter-arrival gaps. With
// fewer than two retained arrivals there is no span, and simultaneous
// arrivals give a zero span; both cases report 0.
func (w *ArrivalWindow) estimateLocked(now time.Time) float64 {
	cutoff := now.Add(-w.length)
	expired := 0
	for expired < len(w.arrivals) && w.arrivals[expired].Before(cutoff) {
		expired++
	}
	w.arrivals = w.arrivals[expired:]

	n := len(w.arrivals)
	if n < 2 {
		return 0.0
	}
	span := w.arrivals[n-1].Sub(w.arrivals[0]).Seconds()
	if span <= 0 {
		return 0.0
	}
	return float64(n-1) / span
}
