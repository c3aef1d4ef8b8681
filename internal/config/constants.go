package config

// Application constants
const (
	AppName     = "Incident Prep"
	ServiceName = "incident-prep"

	// File layout, relative to the base directory
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultReportsDir = "data/reports"

	RawDatasetFile      = "incidents_aggregated_5k.csv"
	DirtyDatasetFile    = "incidents_dirty.csv"
	CleanDatasetFile    = "incidents_clean.csv"
	SummaryJSONFile     = "summary.json"
	ReportWorkbookFile  = "incident_report.xlsx"
	MetricsTextfileFile = "pipeline.prom"

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Cleaning defaults
	DefaultClampQuantile       = 0.99
	DefaultSLAThresholdHours   = 24.0
	DefaultQuickThresholdHours = 12.0

	// Synthetic data defaults
	DefaultGenerateRows = 2000
	DefaultGenerateSeed = 42
)
