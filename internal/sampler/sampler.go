package sampler

import (
	"errors"
	"sync"
	"time"

	"github.com/nozo-moto/netspeed/pkg/types"
)

// ErrClockAnomaly is returned when a snapshot is not strictly newer than the
// baseline it is compared against.
var ErrClockAnomaly = errors.New("non-positive elapsed time between snapshots")

// SamplerState is everything the sampler carries from one tick to the next.
type SamplerState struct {
	Start     time.Time
	Prev      *types.CounterSnapshot
	Totals    types.RunningTotals
	Resets    types.Resets
	Anomalies uint64
}

type Option func(*RateSampler)

// WithNormalize controls whether byte deltas are divided by the measured
// elapsed seconds. With it disabled every tick is assumed to be one second.
func WithNormalize(normalize bool) Option {
	return func(s *RateSampler) {
		s.normalize = normalize
	}
}

// WithStart sets the reference time that sample timestamps are measured from.
func WithStart(start time.Time) Option {
	return func(s *RateSampler) {
		s.state.Start = start
	}
}

// RateSampler turns consecutive counter snapshots into rate samples and
// keeps the running totals.
type RateSampler struct {
	mu        sync.RWMutex
	state     SamplerState
	normalize bool
}

func New(opts ...Option) *RateSampler {
	s := &RateSampler{normalize: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.state.Start.IsZero() {
		s.state.Start = time.Now()
	}
	return s
}

// Sample derives a RateSample from prev and curr and adds it to the totals.
// A nil prev yields zero rates. A direction whose counter went backwards
// yields zero for that direction.
func (s *RateSampler) Sample(prev *types.CounterSnapshot, curr types.CounterSnapshot) (types.RateSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sample(prev, curr)
}

// Observe samples curr against the previous snapshot it was given and makes
// curr the new baseline. On ErrClockAnomaly the baseline is kept.
func (s *RateSampler) Observe(curr types.CounterSnapshot) (types.RateSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample, err := s.sample(s.state.Prev, curr)
	if err != nil {
		return sample, err
	}
	snap := curr
	s.state.Prev = &snap
	return sample, nil
}

func (s *RateSampler) sample(prev *types.CounterSnapshot, curr types.CounterSnapshot) (types.RateSample, error) {
	sample := types.RateSample{
		Timestamp: curr.Timestamp.Sub(s.state.Start).Seconds(),
	}
	if prev == nil {
		return sample, nil
	}

	elapsed := curr.Timestamp.Sub(prev.Timestamp).Seconds()
	if elapsed <= 0 {
		s.state.Anomalies++
		return types.RateSample{}, ErrClockAnomaly
	}
	divisor := types.MB
	if s.normalize {
		divisor *= elapsed
	}

	if curr.BytesSent < prev.BytesSent {
		s.state.Resets.Upload++
	} else {
		delta := curr.BytesSent - prev.BytesSent
		sample.UploadRate = float64(delta) / divisor
		s.state.Totals.BytesSent += delta
	}

	if curr.BytesReceived < prev.BytesReceived {
		s.state.Resets.Download++
	} else {
		delta := curr.BytesReceived - prev.BytesReceived
		sample.DownloadRate = float64(delta) / divisor
		s.state.Totals.BytesReceived += delta
	}

	s.state.Totals.TotalUpload += sample.UploadRate
	s.state.Totals.TotalDownload += sample.DownloadRate
	return sample, nil
}

func (s *RateSampler) Totals() types.RunningTotals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Totals
}

// State returns a copy of the sampler state.
func (s *RateSampler) State() SamplerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.Prev != nil {
		prev := *st.Prev
		st.Prev = &prev
	}
	return st
}

// Reset drops the baseline and totals but keeps the start time.
func (s *RateSampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SamplerState{Start: s.state.Start}
}
