package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nozo-moto/netspeed/internal/monitor"
	"github.com/nozo-moto/netspeed/internal/sampler"
	"github.com/nozo-moto/netspeed/pkg/types"
)

const namespace = "netspeed"

// Exporter mirrors each frame into Prometheus metrics.
type Exporter struct {
	registry *prometheus.Registry

	rate        *prometheus.GaugeVec
	rateTotal   *prometheus.GaugeVec
	bytesTotal  *prometheus.GaugeVec
	resets      *prometheus.GaugeVec
	anomalies   prometheus.Gauge
	ticks       prometheus.Counter
	unavailable prometheus.Counter
	lastSample  prometheus.Gauge
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),

		rate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_megabytes_per_second",
			Help:      "Most recent sampled throughput.",
		}, []string{"direction"}),

		rateTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_sum_megabytes",
			Help:      "Running sum of sampled rates.",
		}, []string{"direction"}),

		bytesTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transferred_bytes",
			Help:      "Bytes observed between non-reset snapshots.",
		}, []string{"direction"}),

		resets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counter_resets",
			Help:      "Counter resets detected.",
		}, []string{"direction"}),

		anomalies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clock_anomalies",
			Help:      "Ticks skipped because no time had elapsed.",
		}),

		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Ticks rendered.",
		}),

		unavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_unavailable_total",
			Help:      "Ticks on which the counter source could not be read.",
		}),

		lastSample: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sample_elapsed_seconds",
			Help:      "Timestamp of the newest sample, in seconds since start.",
		}),
	}

	e.registry.MustRegister(
		e.rate,
		e.rateTotal,
		e.bytesTotal,
		e.resets,
		e.anomalies,
		e.ticks,
		e.unavailable,
		e.lastSample,
	)
	return e
}

func (e *Exporter) Render(frame types.Frame) {
	e.ticks.Inc()
	if errors.Is(frame.Err, monitor.ErrCounterUnavailable) {
		e.unavailable.Inc()
	}
	if frame.Err != nil && !errors.Is(frame.Err, sampler.ErrClockAnomaly) {
		return
	}

	e.rate.WithLabelValues("upload").Set(frame.Latest.UploadRate)
	e.rate.WithLabelValues("download").Set(frame.Latest.DownloadRate)
	e.rateTotal.WithLabelValues("upload").Set(frame.Totals.TotalUpload)
	e.rateTotal.WithLabelValues("download").Set(frame.Totals.TotalDownload)
	e.bytesTotal.WithLabelValues("upload").Set(float64(frame.Totals.BytesSent))
	e.bytesTotal.WithLabelValues("download").Set(float64(frame.Totals.BytesReceived))
	e.resets.WithLabelValues("upload").Set(float64(frame.Resets.Upload))
	e.resets.WithLabelValues("download").Set(float64(frame.Resets.Download))
	e.anomalies.Set(float64(frame.Anomalies))
	e.lastSample.Set(frame.Latest.Timestamp)
}

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		Registry:          e.registry,
		EnableOpenMetrics: true,
	})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (e *Exporter) Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
