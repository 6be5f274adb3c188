package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nozo-moto/netspeed/internal/collector"
	"github.com/nozo-moto/netspeed/internal/config"
	"github.com/nozo-moto/netspeed/internal/history"
	"github.com/nozo-moto/netspeed/internal/logging"
	"github.com/nozo-moto/netspeed/internal/metrics"
	"github.com/nozo-moto/netspeed/internal/monitor"
	"github.com/nozo-moto/netspeed/internal/sampler"
	"github.com/nozo-moto/netspeed/internal/ui"
)

var version = "dev"

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "netspeed",
		Short: "Realtime upload/download speed monitor",
		Long: `netspeed samples network byte counters once per tick, shows the
current upload and download speed in MB/s, running totals, and a chart of
the last few seconds.

Examples:
  netspeed
  netspeed --interface eth0 --window 30
  netspeed --headless --metrics-addr :9310
  netspeed --source node_exporter --node-exporter-url http://host:9100/metrics`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.Int("interval", 1000, "tick interval in milliseconds")
	flags.Float64("window", 10, "chart window in seconds")
	flags.Bool("normalize", true, "divide byte deltas by the measured elapsed time")
	flags.Float64("retention", 0, "seconds of history to keep, 0 keeps everything")
	flags.String("source", config.SourceHost, "counter source: host or node_exporter")
	flags.StringP("interface", "i", "", "interface to sample, default all but loopback")
	flags.String("node-exporter-url", "http://localhost:9100/metrics", "node_exporter metrics endpoint")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.Bool("headless", false, "log samples instead of drawing the dashboard")
	flags.String("log-file", "", "append JSON logs to this file")
	flags.String("log-level", "info", "log level")
	flags.Bool("list-interfaces", false, "print the host's interfaces and exit")

	config.SetDefaults(v)
	for key, flag := range map[string]string{
		"tick_interval_ms":        "interval",
		"window_duration_seconds": "window",
		"normalize_elapsed":       "normalize",
		"retention_seconds":       "retention",
		"source":                  "source",
		"interface":               "interface",
		"node_exporter_url":       "node-exporter-url",
		"metrics_addr":            "metrics-addr",
		"headless":                "headless",
		"log_file":                "log-file",
		"log_level":               "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, v *viper.Viper) error {
	if list, _ := cmd.Flags().GetBool("list-interfaces"); list {
		names, err := collector.NewNetworkCollector("").GetActiveInterfaces(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.LogLevel, cfg.LogFile, cfg.Headless)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info().Str("version", version).Str("source", cfg.Source).Msg("starting netspeed")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source monitor.CounterSource
	switch cfg.Source {
	case config.SourceNodeExporter:
		source = collector.NewNodeExporterCollector(cfg.NodeExporterURL, cfg.Interface)
	default:
		source = collector.NewNetworkCollector(cfg.Interface)
	}

	opts := []monitor.Option{
		monitor.WithInterval(cfg.TickInterval),
		monitor.WithWindow(cfg.WindowDuration),
		monitor.WithReadTimeout(cfg.ReadTimeout),
		monitor.WithLogger(logger),
	}

	errCh := make(chan error, 2)
	if cfg.MetricsAddr != "" {
		exporter := metrics.NewExporter()
		opts = append(opts, monitor.WithRenderer(exporter))
		go func() {
			if err := exporter.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				errCh <- fmt.Errorf("failed to serve metrics: %w", err)
				stop()
			}
		}()
	}

	var dashboard *ui.Dashboard
	if cfg.Headless {
		opts = append(opts, monitor.WithRenderer(ui.NewLogRenderer(logger)))
	} else {
		dashboard = ui.NewDashboard(cfg.WindowDuration)
		opts = append(opts, monitor.WithRenderer(dashboard))
	}

	mon := newMonitor(cfg, source, clock.New(), opts...)

	if dashboard == nil {
		if err := mon.Run(ctx); err != nil {
			return err
		}
	} else {
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = mon.Run(ctx)
		}()
		if err := dashboard.Run(ctx, stop); err != nil {
			stop()
			<-done
			return err
		}
		stop()
		<-done
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// newMonitor builds the pipeline around clk so the sampler's start time and
// the tick timestamps come from the same clock.
func newMonitor(cfg config.Config, source monitor.CounterSource, clk clock.Clock, opts ...monitor.Option) *monitor.Monitor {
	return monitor.New(
		source,
		sampler.New(sampler.WithNormalize(cfg.Normalize), sampler.WithStart(clk.Now())),
		history.NewWindow(history.WithRetention(cfg.Retention)),
		append([]monitor.Option{monitor.WithClock(clk)}, opts...)...,
	)
}
