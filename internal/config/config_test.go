package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentcli/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, 0.99, cfg.Pipeline.ClampQuantile)
	assert.Equal(t, 24.0, cfg.Pipeline.SLAThresholdHours)
	assert.Equal(t, 12.0, cfg.Pipeline.QuickThresholdHours)
	assert.False(t, cfg.Pipeline.FailOnEmpty)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.Empty(t, cfg.Storage.SQLitePath)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		env         map[string]string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "no file and no env uses defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default().Pipeline, cfg.Pipeline)
			},
		},
		{
			name: "file overrides defaults",
			yaml: "pipeline:\n  clamp_quantile: 0.95\n  fail_on_empty: true\nlogging:\n  level: debug\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0.95, cfg.Pipeline.ClampQuantile)
				assert.True(t, cfg.Pipeline.FailOnEmpty)
				assert.Equal(t, "debug", cfg.Logging.Level)
				// untouched keys keep their defaults
				assert.Equal(t, 24.0, cfg.Pipeline.SLAThresholdHours)
			},
		},
		{
			name: "env overrides file",
			yaml: "pipeline:\n  clamp_quantile: 0.95\n",
			env: map[string]string{
				"INCIDENT_PIPELINE_CLAMP_QUANTILE": "0.9",
				"INCIDENT_STORAGE_SQLITE_PATH":     "data/incidents.db",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 0.9, cfg.Pipeline.ClampQuantile)
				assert.Equal(t, "data/incidents.db", cfg.Storage.SQLitePath)
			},
		},
		{
			name:    "quantile out of range",
			env:     map[string]string{"INCIDENT_PIPELINE_CLAMP_QUANTILE": "1.5"},
			wantErr: true,
		},
		{
			name:    "unknown log output",
			yaml:    "logging:\n  output: syslog\n",
			wantErr: true,
		},
		{
			name:    "quick threshold above sla threshold",
			env:     map[string]string{"INCIDENT_PIPELINE_QUICK_THRESHOLD_HOURS": "48"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "pipeline: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				require.Error(t, err)
				var appErr *errors.AppError
				require.True(t, stderrors.As(err, &appErr))
				assert.Equal(t, errors.ErrTypeConfig, appErr.Type)
				return
			}

			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_ConfigFileEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  sla_threshold_hours: 36\n"), 0644))
	t.Setenv(ConfigFileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 36.0, cfg.Pipeline.SLAThresholdHours)
}

func TestValidate_FillsLogFilePath(t *testing.T) {
	cfg := Default()
	cfg.Logging.Output = "BOTH"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}
