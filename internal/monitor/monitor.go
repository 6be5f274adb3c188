package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/nozo-moto/netspeed/internal/history"
	"github.com/nozo-moto/netspeed/internal/sampler"
	"github.com/nozo-moto/netspeed/pkg/types"
)

// ErrCounterUnavailable wraps any failure to read the counter source.
var ErrCounterUnavailable = errors.New("counter source unavailable")

const (
	DefaultInterval    = time.Second
	DefaultWindow      = 10.0
	DefaultReadTimeout = 500 * time.Millisecond
)

// CounterSource provides cumulative byte counters.
type CounterSource interface {
	Read(ctx context.Context) (types.Counters, error)
}

// Renderer is notified once per tick, after the tick has been applied.
type Renderer interface {
	Render(frame types.Frame)
}

// RenderFunc adapts a plain function to Renderer.
type RenderFunc func(frame types.Frame)

func (f RenderFunc) Render(frame types.Frame) { f(frame) }

type Option func(*Monitor)

func WithClock(c clock.Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithWindow sets the span in seconds of the windowed view handed to renderers.
func WithWindow(seconds float64) Option {
	return func(m *Monitor) { m.window = seconds }
}

func WithReadTimeout(d time.Duration) Option {
	return func(m *Monitor) { m.readTimeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

func WithRenderer(r ...Renderer) Option {
	return func(m *Monitor) { m.renderers = append(m.renderers, r...) }
}

// Monitor drives the sampling loop: read, sample, append, render.
type Monitor struct {
	source  CounterSource
	sampler *sampler.RateSampler
	history *history.Window

	clock       clock.Clock
	interval    time.Duration
	window      float64
	readTimeout time.Duration
	logger      zerolog.Logger
	renderers   []Renderer

	// held for the whole tick so ticks never interleave
	mu sync.Mutex
}

func New(source CounterSource, s *sampler.RateSampler, h *history.Window, opts ...Option) *Monitor {
	m := &Monitor{
		source:      source,
		sampler:     s,
		history:     h,
		clock:       clock.New(),
		interval:    DefaultInterval,
		window:      DefaultWindow,
		readTimeout: DefaultReadTimeout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run ticks until ctx is cancelled. The next tick is armed only once the
// current one has finished, so a slow tick delays rather than overlaps.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().
		Dur("interval", m.interval).
		Float64("window", m.window).
		Msg("sampling started")

	timer := m.clock.Timer(m.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("sampling stopped")
			return nil
		case <-timer.C:
			_, _ = m.Tick(ctx)
			timer.Reset(m.interval)
		}
	}
}

// Tick performs one sampling step and notifies renderers. A failed read or a
// clock anomaly leaves totals and history untouched; the returned error says
// which. If ctx is cancelled during the read nothing is applied or rendered.
func (m *Monitor) Tick(ctx context.Context) (types.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counters, err := m.read(ctx)
	if ctx.Err() != nil {
		return types.Frame{}, ctx.Err()
	}
	now := m.clock.Now()

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrCounterUnavailable, err)
		m.logger.Warn().Err(err).Msg("skipping tick")
		return m.emit(now, err), err
	}

	before := m.sampler.State().Resets
	sample, err := m.sampler.Observe(types.CounterSnapshot{
		BytesSent:     counters.BytesSent,
		BytesReceived: counters.BytesReceived,
		Timestamp:     now,
	})
	if err != nil {
		m.logger.Debug().Err(err).Time("at", now).Msg("skipping tick")
		return m.emit(now, err), err
	}

	if err := m.history.Append(sample); err != nil {
		m.logger.Error().Err(err).Float64("timestamp", sample.Timestamp).Msg("failed to append sample")
		return m.emit(now, err), err
	}

	if after := m.sampler.State().Resets; after != before {
		m.logger.Debug().
			Uint64("upload_resets", after.Upload).
			Uint64("download_resets", after.Download).
			Msg("counter reset, rebaselined")
	}

	return m.emit(now, nil), nil
}

func (m *Monitor) read(ctx context.Context) (types.Counters, error) {
	ctx, cancel := context.WithTimeout(ctx, m.readTimeout)
	defer cancel()

	type result struct {
		counters types.Counters
		err      error
	}
	resultCh := make(chan result, 1)
	go func() {
		counters, err := m.source.Read(ctx)
		resultCh <- result{counters, err}
	}()

	select {
	case r := <-resultCh:
		return r.counters, r.err
	case <-ctx.Done():
		return types.Counters{}, fmt.Errorf("read timed out after %s: %w", m.readTimeout, ctx.Err())
	}
}

func (m *Monitor) emit(now time.Time, err error) types.Frame {
	state := m.sampler.State()
	frame := types.Frame{
		Time:      now,
		Totals:    state.Totals,
		Window:    m.history.Windowed(m.window),
		Resets:    state.Resets,
		Anomalies: state.Anomalies,
		Err:       err,
	}
	if n := len(frame.Window); n > 0 {
		frame.Latest = frame.Window[n-1]
	}

	for _, r := range m.renderers {
		r.Render(frame)
	}
	return frame
}
