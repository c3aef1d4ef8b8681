package dataprocessing

import (
	"incidentcli/internal/config"
	"incidentcli/pkg/contracts/domain"
)

// Stage names in execution order. They appear in progress lines, logs,
// span names and the stage metric label.
const (
	StageLoad        = "load"
	StageDeduplicate = "deduplicate"
	StageNormalize   = "normalize_labels"
	StageParseTimes  = "parse_timestamps"
	StageRetention   = "drop_missing_opened"
	StageConsistency = "fix_temporal_order"
	StageDuration    = "reconcile_durations"
	StageClamp       = "clamp_outliers"
	StageFeatures    = "derive_features"
)

// StageNames lists every stage in order.
var StageNames = []string{
	StageLoad,
	StageDeduplicate,
	StageNormalize,
	StageParseTimes,
	StageRetention,
	StageConsistency,
	StageDuration,
	StageClamp,
	StageFeatures,
}

// Options configures a cleaning run
type Options struct {
	// Delimiter of the input file; zero picks one from the extension.
	Delimiter rune

	// PriorityVariants maps canonical priorities to accepted spellings.
	PriorityVariants map[domain.Priority][]string

	ClampQuantile float64
	Thresholds    FeatureThresholds

	// FailOnEmpty turns an empty result into an error instead of a
	// header-only output file.
	FailOnEmpty bool

	// OutputBOM prefixes the output with a UTF-8 byte order mark.
	OutputBOM bool
}

// DefaultOptions returns default processing options
func DefaultOptions() Options {
	return Options{
		PriorityVariants: domain.DefaultPriorityVariants(),
		ClampQuantile:    config.DefaultClampQuantile,
		Thresholds: FeatureThresholds{
			SLAHours:   config.DefaultSLAThresholdHours,
			QuickHours: config.DefaultQuickThresholdHours,
		},
	}
}

// OptionsFromConfig maps the pipeline section of the configuration.
func OptionsFromConfig(cfg config.PipelineConfig) Options {
	opts := DefaultOptions()
	if cfg.ClampQuantile > 0 {
		opts.ClampQuantile = cfg.ClampQuantile
	}
	if cfg.SLAThresholdHours > 0 {
		opts.Thresholds.SLAHours = cfg.SLAThresholdHours
	}
	if cfg.QuickThresholdHours > 0 {
		opts.Thresholds.QuickHours = cfg.QuickThresholdHours
	}
	opts.FailOnEmpty = cfg.FailOnEmpty
	opts.OutputBOM = cfg.OutputBOM
	return opts
}
