package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SourceHost         = "host"
	SourceNodeExporter = "node_exporter"
)

// Config holds every recognised option. The rate unit is fixed at MB/s and
// is not configurable.
type Config struct {
	TickInterval    time.Duration
	WindowDuration  float64
	Normalize       bool
	Retention       float64
	ReadTimeout     time.Duration
	Source          string
	Interface       string
	NodeExporterURL string
	MetricsAddr     string
	Headless        bool
	LogFile         string
	LogLevel        string
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("tick_interval_ms", 1000)
	v.SetDefault("window_duration_seconds", 10)
	v.SetDefault("normalize_elapsed", true)
	v.SetDefault("retention_seconds", 0)
	v.SetDefault("read_timeout_ms", 500)
	v.SetDefault("source", SourceHost)
	v.SetDefault("interface", "")
	v.SetDefault("node_exporter_url", "http://localhost:9100/metrics")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("headless", false)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("netspeed")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		TickInterval:    time.Duration(v.GetInt("tick_interval_ms")) * time.Millisecond,
		WindowDuration:  v.GetFloat64("window_duration_seconds"),
		Normalize:       v.GetBool("normalize_elapsed"),
		Retention:       v.GetFloat64("retention_seconds"),
		ReadTimeout:     time.Duration(v.GetInt("read_timeout_ms")) * time.Millisecond,
		Source:          v.GetString("source"),
		Interface:       v.GetString("interface"),
		NodeExporterURL: v.GetString("node_exporter_url"),
		MetricsAddr:     v.GetString("metrics_addr"),
		Headless:        v.GetBool("headless"),
		LogFile:         v.GetString("log_file"),
		LogLevel:        v.GetString("log_level"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return errors.New("tick_interval_ms must be positive")
	}
	if c.WindowDuration <= 0 {
		return errors.New("window_duration_seconds must be positive")
	}
	if c.Retention < 0 {
		return errors.New("retention_seconds must not be negative")
	}
	if c.Retention > 0 && c.Retention < c.WindowDuration {
		return fmt.Errorf("retention_seconds (%g) must cover window_duration_seconds (%g)", c.Retention, c.WindowDuration)
	}
	if c.ReadTimeout <= 0 {
		return errors.New("read_timeout_ms must be positive")
	}
	switch c.Source {
	case SourceHost:
	case SourceNodeExporter:
		if c.NodeExporterURL == "" {
			return errors.New("node_exporter_url must be set for the node_exporter source")
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	return nil
}
