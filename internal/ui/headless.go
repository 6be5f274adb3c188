package ui

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/nozo-moto/netspeed/internal/monitor"
	"github.com/nozo-moto/netspeed/internal/sampler"
	"github.com/nozo-moto/netspeed/pkg/types"
)

// LogRenderer writes one log line per tick instead of drawing a dashboard.
type LogRenderer struct {
	logger zerolog.Logger
}

func NewLogRenderer(logger zerolog.Logger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

func (r *LogRenderer) Render(frame types.Frame) {
	switch {
	case frame.Err == nil:
	case errors.Is(frame.Err, monitor.ErrCounterUnavailable):
		r.logger.Warn().Err(frame.Err).Msg("source unavailable, totals unchanged")
		return
	case errors.Is(frame.Err, sampler.ErrClockAnomaly):
		return
	default:
		r.logger.Warn().Err(frame.Err).Msg("tick skipped")
		return
	}

	r.logger.Info().
		Float64("elapsed", frame.Latest.Timestamp).
		Str("upload", uploadSpeedLabel(frame.Latest)).
		Str("download", downloadSpeedLabel(frame.Latest)).
		Str("total_upload", totalUploadLabel(frame.Totals)).
		Str("total_download", totalDownloadLabel(frame.Totals)).
		Int("window", len(frame.Window)).
		Msg("sample")
}
