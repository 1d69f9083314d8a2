package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) { //nolint:paralleltest // env-sensitive
	config, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.False(t, config.Enabled)
	assert.Equal(t, "amp-workflow", config.ServiceName)
	assert.Equal(t, "1.0.0", config.ServiceVersion)
	assert.Equal(t, "local", config.Environment)
	assert.Equal(t, defaultTimeout, config.Timeout)
}

func TestLoadConfigFromEnvOverrides(t *testing.T) { //nolint:paralleltest // env-sensitive
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SERVICE_NAME", "wfsim")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "http://localhost:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_TIMEOUT", "10s")

	config, err := LoadConfigFromEnv()
	require.NoError(t, err)

	assert.True(t, config.Enabled)
	assert.Equal(t, "wfsim", config.ServiceName)
	assert.Equal(t, "http://localhost:4318", config.Endpoint)
	assert.Equal(t, 10*time.Second, config.Timeout)
}

func TestInitializeNoops(t *testing.T) {
	t.Parallel()

	err := Initialize(t.Context(), &Config{Enabled: false})
	require.NoError(t, err)

	err = Initialize(t.Context(), &Config{Enabled: true, Endpoint: ""})
	require.NoError(t, err)

	require.NoError(t, Shutdown(t.Context()))
}
