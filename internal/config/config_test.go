package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 10.0, cfg.WindowDuration)
	assert.True(t, cfg.Normalize)
	assert.Zero(t, cfg.Retention)
	assert.Equal(t, 500*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, SourceHost, cfg.Source)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("NETSPEED_TICK_INTERVAL_MS", "250")
	t.Setenv("NETSPEED_SOURCE", "node_exporter")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, SourceNodeExporter, cfg.Source)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netspeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_duration_seconds: 30\nnormalize_elapsed: false\ninterface: eth0\n"), 0o600))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.WindowDuration)
	assert.False(t, cfg.Normalize)
	assert.Equal(t, "eth0", cfg.Interface)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"zero interval", "tick_interval_ms", 0},
		{"negative window", "window_duration_seconds", -1},
		{"short retention", "retention_seconds", 5},
		{"zero read timeout", "read_timeout_ms", 0},
		{"unknown source", "source", "snmp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
