package observability

import (
	"testing"

	"github.com/smallbiznis/sevadesk/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{AppName: " ", Environment: "production", AppVersion: "1.2.0", OTLPEndpoint: "otel:4317"})

	assert.Equal(t, "sevadesk", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "1.2.0", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "otel:4317", cfg.OtelExporterEndpoint)
	assert.False(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.5")

	cfg := LoadConfig(config.Config{AppName: "desk", Environment: "production"})

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, 0.5, cfg.OtelSamplingRatio)
	assert.True(t, cfg.Debug())
}

func TestSplitConfigStacksOnlyInDebug(t *testing.T) {
	out := splitConfig(Config{ServiceName: "desk", Environment: "local"})
	assert.True(t, out.Logger.IncludeStackOnError)
	assert.Equal(t, "desk", out.Tracing.ServiceName)

	out = splitConfig(Config{ServiceName: "desk", Environment: "production", LogLevel: "info"})
	assert.False(t, out.Logger.IncludeStackOnError)
}
