package ui

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/nozo-moto/netspeed/internal/monitor"
	"github.com/nozo-moto/netspeed/internal/sampler"
	"github.com/nozo-moto/netspeed/pkg/types"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(1024*1024*3/2))
	assert.Equal(t, "2.0 TB", formatBytes(2<<40))
	assert.Equal(t, "1023 B", formatBytes(1023))
}

func TestLabels(t *testing.T) {
	totals := types.RunningTotals{TotalUpload: 1.234, TotalDownload: 2048}
	sample := types.RateSample{UploadRate: 1, DownloadRate: 2.005}

	assert.Equal(t, "Total Upload: 1.23 MB", totalUploadLabel(totals))
	assert.Equal(t, "Total Download: 2.00 GB", totalDownloadLabel(totals))
	assert.Equal(t, "Upload Speed: 1.00 MB/s", uploadSpeedLabel(sample))
	assert.True(t, strings.HasPrefix(downloadSpeedLabel(sample), "Download Speed: 2.0"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", formatDuration(42.9))
	assert.Equal(t, "2m5s", formatDuration(125))
	assert.Equal(t, "1h1m", formatDuration(3660))
}

func TestRenderGraphNeedsTwoSamples(t *testing.T) {
	assert.Contains(t, renderGraph(nil, 10, 40, 10), "Collecting")
	assert.Contains(t, renderGraph([]types.RateSample{{Timestamp: 1}}, 10, 40, 10), "Collecting")
}

func TestRenderGraphPlotsPoints(t *testing.T) {
	samples := []types.RateSample{
		{Timestamp: 14, UploadRate: 1, DownloadRate: 4},
		{Timestamp: 15, UploadRate: 2, DownloadRate: 3},
		{Timestamp: 16, UploadRate: 0, DownloadRate: 4},
	}
	out := renderGraph(samples, 10, 40, 10)

	assert.Equal(t, 3, strings.Count(out, "▲[white]"))
	assert.Equal(t, 3, strings.Count(out, "▼[white]"))
	assert.Contains(t, out, "4.00")
	assert.Contains(t, out, "6s")
	assert.Contains(t, out, "16s")
}

func TestRenderGraphIdle(t *testing.T) {
	samples := []types.RateSample{{Timestamp: 1}, {Timestamp: 2}}
	out := renderGraph(samples, 10, 40, 10)

	assert.NotContains(t, out, "▲[white]")
	assert.Contains(t, out, "└")
}

func TestDashboardApply(t *testing.T) {
	d := NewDashboard(10)
	d.apply(types.Frame{
		Time:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Totals: types.RunningTotals{TotalUpload: 3, TotalDownload: 6},
		Latest: types.RateSample{Timestamp: 3, UploadRate: 1, DownloadRate: 2},
		Window: []types.RateSample{{Timestamp: 2}, {Timestamp: 3, UploadRate: 1, DownloadRate: 2}},
	})

	assert.Contains(t, d.dateTimeView.GetText(true), "2024-05-01 12:00:00")
	assert.Contains(t, d.totalsView.GetText(true), "Total Upload: 3.00 MB")
	assert.Contains(t, d.totalsView.GetText(true), "Total Download: 6.00 MB")
	assert.Contains(t, d.speedView.GetText(true), "Upload Speed: 1.00 MB/s")
	assert.Contains(t, d.speedView.GetText(true), "Download Speed: 2.00 MB/s")
	assert.Contains(t, d.statusView.GetText(true), "q to quit")

	d.apply(types.Frame{Err: errors.New("counter source unavailable")})
	assert.Contains(t, d.statusView.GetText(true), "counter source unavailable")
}

func TestLogRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewLogRenderer(zerolog.New(&buf))

	r.Render(types.Frame{
		Totals: types.RunningTotals{TotalUpload: 1},
		Latest: types.RateSample{Timestamp: 1, UploadRate: 1},
		Window: []types.RateSample{{Timestamp: 1, UploadRate: 1}},
	})
	assert.Contains(t, buf.String(), "Upload Speed: 1.00 MB/s")
	assert.Contains(t, buf.String(), `"window":1`)

	buf.Reset()
	r.Render(types.Frame{Err: fmt.Errorf("%w: %w", monitor.ErrCounterUnavailable, errors.New("gone"))})
	assert.Contains(t, buf.String(), "source unavailable")
	assert.Contains(t, buf.String(), "gone")

	buf.Reset()
	r.Render(types.Frame{Err: errors.New("history rejected sample")})
	assert.Contains(t, buf.String(), "history rejected sample")
	assert.NotContains(t, buf.String(), "source unavailable")

	buf.Reset()
	r.Render(types.Frame{Err: sampler.ErrClockAnomaly})
	assert.Empty(t, buf.String())
}
