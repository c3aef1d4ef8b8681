package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProviders(t *testing.T, cfg *OTelConfig) *OTelProviders {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, providers.Shutdown(context.Background()))
	})
	return providers
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		config *OTelConfig
	}{
		{name: "defaults", config: nil},
		{
			name: "stdout tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "stdout",
				EnableMetrics:  true,
			},
		},
		{
			name: "everything disabled",
			config: &OTelConfig{
				ServiceName:   "test-service",
				TraceExporter: "none",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers := newTestProviders(t, tt.config)
			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.NotNil(t, providers.Registry)

			if tt.config != nil && tt.config.TraceExporter == "stdout" {
				assert.NotNil(t, providers.TracerProvider)
			}
			if tt.config == nil || tt.config.EnableMetrics {
				assert.NotNil(t, providers.MeterProvider)
			} else {
				assert.Nil(t, providers.MeterProvider)
			}
		})
	}
}

func TestOTelUnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{ServiceName: "x", TraceExporter: "otlp"}, slog.Default())
	assert.Error(t, err)
}

func TestPipelineMetrics_WriteMetricsFile(t *testing.T) {
	providers := newTestProviders(t, DefaultOTelConfig())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordStageMetrics(ctx, metrics, "deduplicate", 10, 8, 5*time.Millisecond)
	RecordParseFailures(ctx, metrics, "first_opened_at", 2)
	RecordClamp(ctx, metrics, 70.5, 3)
	RecordRun(ctx, metrics, nil)

	families, err := providers.Registry.Gather()
	require.NoError(t, err)

	names := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				names[mf.GetName()] += c.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				names[mf.GetName()] = g.GetValue()
			}
		}
	}

	assert.Equal(t, 10.0, names["pipeline_stage_rows_in_total"])
	assert.Equal(t, 8.0, names["pipeline_stage_rows_out_total"])
	assert.Equal(t, 2.0, names["pipeline_stage_rows_dropped_total"])
	assert.Equal(t, 2.0, names["pipeline_parse_failures_total"])
	assert.Equal(t, 3.0, names["pipeline_values_clamped_total"])
	assert.Equal(t, 70.5, names["pipeline_clamp_cap_hours"])
	assert.Equal(t, 1.0, names["pipeline_runs_total"])

	path := filepath.Join(t.TempDir(), "reports", "pipeline.prom")
	require.NoError(t, providers.WriteMetricsFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "pipeline_stage_rows_in_total")
	assert.Contains(t, string(content), `stage="deduplicate"`)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordStageMetrics(ctx, nil, "x", 1, 1, time.Second)
		RecordParseFailures(ctx, nil, "x", 1)
		RecordClamp(ctx, nil, 1, 1)
		RecordRun(ctx, nil, nil)
		RecordError(ctx, assert.AnError)
	})
}
