package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file system location the tools read or write.
// All paths are resolved against BaseDir.
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	LogsDir    string

	RawCSV         string
	DirtyCSV       string
	CleanCSV       string
	SummaryJSON    string
	ReportWorkbook string
	MetricsFile    string
}

// PathsFromConfig resolves the layout described by cfg. A relative or empty
// base directory is taken from the working directory.
func PathsFromConfig(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" || !filepath.IsAbs(base) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = filepath.Join(wd, base)
	}

	p := NewPaths(base)
	if cfg.DataDir != "" && cfg.DataDir != DefaultDataDir {
		p.setDataDir(resolve(base, cfg.DataDir))
	}
	if cfg.LogsDir != "" {
		p.LogsDir = resolve(base, cfg.LogsDir)
	}
	return p, nil
}

// NewPaths builds the default layout under baseDir:
//
//	<base>/
//	  data/
//	    incidents_aggregated_5k.csv   (generator output)
//	    incidents_dirty.csv           (corruptor output)
//	    incidents_clean.csv           (pipeline output)
//	    reports/                      (summary, workbook, metrics)
//	  logs/
func NewPaths(baseDir string) *Paths {
	p := &Paths{
		BaseDir: baseDir,
		LogsDir: filepath.Join(baseDir, DefaultLogsDir),
	}
	p.setDataDir(filepath.Join(baseDir, DefaultDataDir))
	return p
}

func (p *Paths) setDataDir(dataDir string) {
	p.DataDir = dataDir
	p.ReportsDir = filepath.Join(dataDir, "reports")
	p.RawCSV = filepath.Join(dataDir, RawDatasetFile)
	p.DirtyCSV = filepath.Join(dataDir, DirtyDatasetFile)
	p.CleanCSV = filepath.Join(dataDir, CleanDatasetFile)
	p.SummaryJSON = filepath.Join(p.ReportsDir, SummaryJSONFile)
	p.ReportWorkbook = filepath.Join(p.ReportsDir, ReportWorkbookFile)
	p.MetricsFile = filepath.Join(p.ReportsDir, MetricsTextfileFile)
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("datasets",
			slog.String("raw", p.RawCSV),
			slog.String("dirty", p.DirtyCSV),
			slog.String("clean", p.CleanCSV),
		))
}
