package domain

import (
	"time"
)

// CategoryCount is one bar of a categorical breakdown.
type CategoryCount struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// ResolutionStats describes the distribution of resolution_hours over the
// non-null values.
type ResolutionStats struct {
	Count   int       `json:"count"`
	Mean    *float64  `json:"mean"`
	Median  *float64  `json:"median"`
	P90     *float64  `json:"p90"`
	P99     *float64  `json:"p99"`
	Longest []float64 `json:"longest"`
}

// IncidentSummary is the descriptive summary of a cleaned incident file.
type IncidentSummary struct {
	Source                 string          `json:"source"`
	GeneratedAt            time.Time       `json:"generated_at"`
	TotalIncidents         int             `json:"total_incidents"`
	ByPriority             []CategoryCount `json:"by_priority"`
	SLA                    []CategoryCount `json:"sla"`
	QuickResolutionPercent *float64        `json:"quick_resolution_percent"`
	Resolution             ResolutionStats `json:"resolution_hours"`
}

// HistogramBin is a half-open interval [Lower, Upper) and its count.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// ChartData feeds the report workbook.
type ChartData struct {
	PriorityCounts []CategoryCount `json:"priority_counts"`
	SLACounts      []CategoryCount `json:"sla_counts"`
	ResolutionBins []HistogramBin  `json:"resolution_bins"`
	// ResolutionClip is the 99th percentile the histogram was clipped at,
	// nil when there were no resolution values.
	ResolutionClip *float64 `json:"resolution_clip,omitempty"`
	Stages         []string `json:"stages"`
}

// StageStat records what one pipeline stage did to the row count.
type StageStat struct {
	Name     string        `json:"name"`
	RowsIn   int           `json:"rows_in"`
	RowsOut  int           `json:"rows_out"`
	Skipped  bool          `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Dropped returns the number of rows the stage removed.
func (s StageStat) Dropped() int {
	return s.RowsIn - s.RowsOut
}

// PipelineRun is the audit record of one cleaning run.
type PipelineRun struct {
	RunID         string         `json:"run_id" db:"run_id"`
	InputPath     string         `json:"input_path" db:"input_path"`
	OutputPath    string         `json:"output_path" db:"output_path"`
	RowsRead      int            `json:"rows_read" db:"rows_read"`
	RowsWritten   int            `json:"rows_written" db:"rows_written"`
	ClampCap      *float64       `json:"clamp_cap,omitempty" db:"clamp_cap"`
	ValuesClamped int            `json:"values_clamped" db:"values_clamped"`
	ParseFailures map[string]int `json:"parse_failures,omitempty" db:"-"`
	Stages        []StageStat    `json:"stages" db:"-"`
	StartedAt     time.Time      `json:"started_at" db:"started_at"`
	FinishedAt    time.Time      `json:"finished_at" db:"finished_at"`
}
