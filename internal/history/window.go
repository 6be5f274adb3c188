package history

import (
	"errors"
	"sort"
	"sync"

	"github.com/nozo-moto/netspeed/pkg/types"
)

// ErrOutOfOrder is returned when a sample is older than the latest one held.
var ErrOutOfOrder = errors.New("sample timestamp precedes latest sample")

type Option func(*Window)

// WithRetention drops samples older than latest-seconds on every append.
// Zero keeps the full history.
func WithRetention(seconds float64) Option {
	return func(w *Window) {
		w.retention = seconds
	}
}

// Window is a time-ordered series of rate samples.
type Window struct {
	mu        sync.RWMutex
	samples   []types.RateSample
	retention float64
}

func NewWindow(opts ...Option) *Window {
	w := &Window{
		samples: make([]types.RateSample, 0, 64),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Window) Append(sample types.RateSample) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if n := len(w.samples); n > 0 && sample.Timestamp < w.samples[n-1].Timestamp {
		return ErrOutOfOrder
	}
	w.samples = append(w.samples, sample)

	if w.retention > 0 {
		if i := w.cutoff(sample.Timestamp - w.retention); i > 0 {
			// Copy down so the backing array does not keep growing.
			n := copy(w.samples, w.samples[i:])
			clear(w.samples[n:])
			w.samples = w.samples[:n]
		}
	}
	return nil
}

// Windowed returns the samples newer than latest-d, so the view covers the
// half-open span (latest-d, latest]. A sample exactly d old is left out,
// which keeps a 1Hz series at d entries. The result is a copy.
func (w *Window) Windowed(d float64) []types.RateSample {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n := len(w.samples)
	if n == 0 {
		return nil
	}
	after := w.samples[n-1].Timestamp - d
	i := sort.Search(n, func(i int) bool {
		return w.samples[i].Timestamp > after
	})
	out := make([]types.RateSample, n-i)
	copy(out, w.samples[i:])
	return out
}

// LatestElapsed returns the timestamp of the newest sample, or 0.
func (w *Window) LatestElapsed() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if len(w.samples) == 0 {
		return 0
	}
	return w.samples[len(w.samples)-1].Timestamp
}

func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.samples)
}

// All returns a copy of every retained sample.
func (w *Window) All() []types.RateSample {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]types.RateSample, len(w.samples))
	copy(out, w.samples)
	return out
}

// cutoff returns the index of the first sample with Timestamp >= oldest.
func (w *Window) cutoff(oldest float64) int {
	return sort.Search(len(w.samples), func(i int) bool {
		return w.samples[i].Timestamp >= oldest
	})
}
