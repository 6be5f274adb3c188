package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozo-moto/netspeed/internal/monitor"
	"github.com/nozo-moto/netspeed/pkg/types"
)

func TestRenderSetsGauges(t *testing.T) {
	e := NewExporter()
	e.Render(types.Frame{
		Latest: types.RateSample{Timestamp: 3, UploadRate: 1.5, DownloadRate: 2.5},
		Totals: types.RunningTotals{TotalUpload: 4, TotalDownload: 6, BytesSent: 100, BytesReceived: 200},
		Resets: types.Resets{Download: 2},
	})

	assert.Equal(t, 1.5, testutil.ToFloat64(e.rate.WithLabelValues("upload")))
	assert.Equal(t, 2.5, testutil.ToFloat64(e.rate.WithLabelValues("download")))
	assert.Equal(t, 6.0, testutil.ToFloat64(e.rateTotal.WithLabelValues("download")))
	assert.Equal(t, 100.0, testutil.ToFloat64(e.bytesTotal.WithLabelValues("upload")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.resets.WithLabelValues("download")))
	assert.Equal(t, 3.0, testutil.ToFloat64(e.lastSample))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.ticks))
}

func TestRenderUnavailableKeepsGauges(t *testing.T) {
	e := NewExporter()
	e.Render(types.Frame{Latest: types.RateSample{UploadRate: 1}})
	e.Render(types.Frame{
		Latest: types.RateSample{UploadRate: 7},
		Err:    fmt.Errorf("%w: %w", monitor.ErrCounterUnavailable, errors.New("gone")),
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(e.rate.WithLabelValues("upload")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.unavailable))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.ticks))
}

func TestHandlerExposesMetrics(t *testing.T) {
	e := NewExporter()
	e.Render(types.Frame{Latest: types.RateSample{UploadRate: 1}})

	srv := httptest.NewServer(e.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `netspeed_rate_megabytes_per_second{direction="upload"} 1`)
}
