package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"incidentcli/internal/config"
	"incidentcli/internal/infrastructure"
	"incidentcli/pkg/contracts"
)

// ShutdownTimeout bounds flushing telemetry on exit.
const ShutdownTimeout = 5 * time.Second

// Application holds what every command needs: configuration, the resolved
// file layout, the logger and the telemetry providers.
type Application struct {
	Name          string
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	// MetricsFile receives the metrics registry on Stop when set. It starts
	// as telemetry.metrics_file resolved against the base directory.
	MetricsFile string
}

// NewApplication loads configuration and brings up logging and telemetry
// for the named command.
func NewApplication(name string) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(name, cfg)
}

// NewApplicationWithConfig is NewApplication with an already loaded
// configuration.
func NewApplicationWithConfig(name string, cfg *config.Config) (*Application, error) {
	paths, err := config.PathsFromConfig(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logCfg := cfg.Logging
	if logCfg.FilePath != "" && !filepath.IsAbs(logCfg.FilePath) {
		logCfg.FilePath = filepath.Join(paths.BaseDir, logCfg.FilePath)
	}
	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = infrastructure.WithComponent(logger, name)
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Name:          name,
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
	}
	if cfg.Telemetry.MetricsFile != "" {
		a.MetricsFile = a.Resolve(cfg.Telemetry.MetricsFile)
	}
	return a, nil
}

// Resolve makes a relative path absolute against the base directory.
func (a *Application) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.Paths.BaseDir, path)
}

// PipelineMetrics creates the cleaning instruments on the app's meter.
func (a *Application) PipelineMetrics() (*infrastructure.PipelineMetrics, error) {
	return infrastructure.CreatePipelineMetrics(a.OTelProviders.Meter)
}

// Run executes fn with a context that carries a fresh run id and is
// cancelled on SIGINT or SIGTERM, then stops the application.
func (a *Application) Run(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureRunID(ctx)

	start := time.Now()
	a.Logger.InfoContext(ctx, "Command started",
		slog.String("command", a.Name),
		slog.String("version", contracts.Version))

	err := fn(ctx)

	if stopErr := a.Stop(context.WithoutCancel(ctx)); stopErr != nil {
		a.Logger.ErrorContext(ctx, "Shutdown failed", slog.String("error", stopErr.Error()))
	}

	if err != nil {
		infrastructure.WithError(a.Logger, err).ErrorContext(ctx, "Command failed",
			slog.String("command", a.Name),
			slog.Duration("elapsed", time.Since(start)))
		return err
	}

	a.Logger.InfoContext(ctx, "Command completed",
		slog.String("command", a.Name),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// Stop writes the metrics file when configured and flushes telemetry.
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	var firstErr error
	if a.MetricsFile != "" {
		if err := a.OTelProviders.WriteMetricsFile(a.MetricsFile); err != nil {
			firstErr = err
		} else {
			a.Logger.InfoContext(ctx, "Metrics written", slog.String("path", a.MetricsFile))
		}
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
