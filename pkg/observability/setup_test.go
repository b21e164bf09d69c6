package observability

import (
	"testing"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/raywall/procurement-mock/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupMetrics(t *testing.T) {
	t.Run("Disabled returns Noop", func(t *testing.T) {
		provider, err := SetupMetrics(config.MetricsConf{}, "procurement-mock")
		require.NoError(t, err)

		assert.IsType(t, &NoopProvider{}, provider)
		assert.NoError(t, provider.Count("x", 1, nil))
		assert.NoError(t, provider.Close())
	})

	t.Run("Enabled returns Datadog", func(t *testing.T) {
		cfg := config.MetricsConf{
			Datadog: config.DatadogConf{
				Enabled: true,
				Addr:    "localhost:8125",
			},
		}

		// statsd.New usa UDP; a criação não exige agente escutando
		provider, err := SetupMetrics(cfg, "procurement-mock")
		require.NoError(t, err)
		assert.IsType(t, &DatadogProvider{}, provider)
		assert.NoError(t, provider.Close())
	})
}

func TestDatadogProvider_Delegates(t *testing.T) {
	provider := &DatadogProvider{client: &statsd.NoOpClient{}}

	assert.NoError(t, provider.Count("http.requests", 1, []string{"route:db"}))
	assert.NoError(t, provider.Gauge("store.records", 10, nil))
	assert.NoError(t, provider.Histogram("http.latency_ms", 3, nil))
}

func TestNamespace(t *testing.T) {
	assert.Equal(t, "procurement_mock.", namespace("", "procurement-mock"))
	assert.Equal(t, "mock.", namespace("mock", "x"))
	assert.Equal(t, "mock.", namespace("mock.", "x"))
	assert.Equal(t, "", namespace("", ""))
}
