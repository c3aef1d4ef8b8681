package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"incidentcli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// PipelineConfig tunes the cleaning pipeline
type PipelineConfig struct {
	// ClampQuantile is the quantile used as the resolution_hours cap.
	ClampQuantile       float64 `yaml:"clamp_quantile" envconfig:"CLAMP_QUANTILE" validate:"gt=0,lte=1"`
	SLAThresholdHours   float64 `yaml:"sla_threshold_hours" envconfig:"SLA_THRESHOLD_HOURS" validate:"gt=0"`
	QuickThresholdHours float64 `yaml:"quick_threshold_hours" envconfig:"QUICK_THRESHOLD_HOURS" validate:"gt=0"`
	// FailOnEmpty aborts the run instead of writing a header-only file.
	FailOnEmpty bool `yaml:"fail_on_empty" envconfig:"FAIL_ON_EMPTY"`
	OutputBOM   bool `yaml:"output_bom" envconfig:"OUTPUT_BOM"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	// MetricsFile receives a Prometheus textfile at the end of a run.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// StorageConfig contains the optional SQLite sink configuration
type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
}

// EnvPrefix namespaces every environment variable, e.g. INCIDENT_LOGGING_LEVEL.
const EnvPrefix = "INCIDENT"

// ConfigFileEnv overrides the config file lookup.
const ConfigFileEnv = "INCIDENT_CONFIG"

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is like Load but reads the YAML file at path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("failed to load config file %s", path), err)
		}
	}

	// No default tags: unset variables leave file and default values alone.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks the struct constraints and normalizes a few fields.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	if err := validate.Struct(c); err != nil {
		return errors.NewConfigError("config validation failed", err)
	}

	if c.Pipeline.QuickThresholdHours > c.Pipeline.SLAThresholdHours {
		return errors.NewConfigError(
			fmt.Sprintf("quick threshold %.2fh exceeds SLA threshold %.2fh",
				c.Pipeline.QuickThresholdHours, c.Pipeline.SLAThresholdHours), nil)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			BaseDir: "",
			DataDir: DefaultDataDir,
			LogsDir: DefaultLogsDir,
		},
		Pipeline: PipelineConfig{
			ClampQuantile:       DefaultClampQuantile,
			SLAThresholdHours:   DefaultSLAThresholdHours,
			QuickThresholdHours: DefaultQuickThresholdHours,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   ServiceName,
			Environment:   "development",
			TraceExporter: "none",
			EnableMetrics: true,
		},
	}
}
