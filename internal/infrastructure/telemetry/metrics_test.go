package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap/zaptest"

	"github.com/verone/backend/internal/infrastructure/telemetry"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    60 * time.Second,
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, mp)

	assert.False(t, mp.IsEnabled())

	gotCfg := mp.GetConfig()
	assert.Equal(t, cfg.ServiceName, gotCfg.ServiceName)
	assert.False(t, gotCfg.Enabled)

	// Shutdown should succeed with no-op
	err = mp.Shutdown(ctx)
	assert.NoError(t, err)
}

func TestMeterProvider_Disabled_MeterAndFlush(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{Enabled: false}, logger)
	require.NoError(t, err)

	// Meter falls back to the global provider
	meter := mp.Meter("test")
	require.NotNil(t, meter)

	err = mp.ForceFlush(ctx)
	assert.NoError(t, err)
}

func TestCounter(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	counter, err := telemetry.NewCounter(meter, "test_counter", "A test counter", "{items}")
	require.NoError(t, err)
	require.NotNil(t, counter)

	ctx := context.Background()

	// Should not panic
	counter.Inc(ctx)
	counter.Add(ctx, 5, attribute.String("key", "value"))
}

func TestHistogram(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	hist, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "test_duration",
		Description: "A test histogram",
		Unit:        "s",
		Boundaries:  telemetry.SmallDurationBuckets,
	})
	require.NoError(t, err)
	require.NotNil(t, hist)

	ctx := context.Background()

	hist.Record(ctx, 0.5)
	hist.RecordDuration(ctx, 150*time.Millisecond, attribute.String("key", "value"))
}

func TestGauge(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	gauge, err := telemetry.NewGauge(meter, "test_gauge", "A test gauge", "{items}")
	require.NoError(t, err)
	require.NotNil(t, gauge)

	gauge.Record(context.Background(), 42)
}

func TestFloatGauge(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	gauge, err := telemetry.NewFloatGauge(meter, "test_float_gauge", "A test float gauge", "m3")
	require.NoError(t, err)
	require.NotNil(t, gauge)

	gauge.Record(context.Background(), 12.5, attribute.String("owner_type", "enseigne"))
}
