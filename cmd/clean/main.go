package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"incidentcli/internal/app"
	"incidentcli/internal/dataprocessing"
	"incidentcli/internal/store"
	"incidentcli/pkg/contracts"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("clean", flag.ContinueOnError)
	inPath := flags.String("in", "", "dirty input CSV (defaults to data/incidents_dirty.csv)")
	outPath := flags.String("out", "", "cleaned output CSV (defaults to data/incidents_clean.csv)")
	dbPath := flags.String("db", "", "also store the run in this SQLite database (overrides storage.sqlite_path)")
	metricsPath := flags.String("metrics", "", "write a Prometheus textfile here (overrides telemetry.metrics_file)")
	failOnEmpty := flags.Bool("fail-on-empty", false, "exit with an error when no rows survive cleaning")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("clean"))
		return nil
	}

	a, err := app.NewApplication("clean")
	if err != nil {
		return err
	}

	in := a.Resolve(*inPath)
	if in == "" {
		in = a.Paths.DirtyCSV
	}
	out := a.Resolve(*outPath)
	if out == "" {
		out = a.Paths.CleanCSV
	}
	if *metricsPath != "" {
		a.MetricsFile = a.Resolve(*metricsPath)
	}
	db := a.Config.Storage.SQLitePath
	if *dbPath != "" {
		db = *dbPath
	}
	db = a.Resolve(db)

	opts := dataprocessing.OptionsFromConfig(a.Config.Pipeline)
	if *failOnEmpty {
		opts.FailOnEmpty = true
	}

	return a.Run(func(ctx context.Context) error {
		options := []dataprocessing.PipelineOption{
			dataprocessing.WithTracer(a.OTelProviders.Tracer),
			dataprocessing.WithProgress(stdout),
		}

		if a.Config.Telemetry.EnableMetrics {
			metrics, err := a.PipelineMetrics()
			if err != nil {
				return fmt.Errorf("failed to create pipeline metrics: %w", err)
			}
			options = append(options, dataprocessing.WithMetrics(metrics))
		}

		if db != "" {
			s, err := store.Open(ctx, db, a.Logger)
			if err != nil {
				return err
			}
			defer s.Close()
			options = append(options, dataprocessing.WithSink(s))
		}

		p := dataprocessing.NewPipeline(a.Logger, opts, options...)
		run, err := p.Run(ctx, in, out)
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "Run %s: %d rows read, %d rows written\n", run.RunID, run.RowsRead, run.RowsWritten)
		if db != "" {
			fmt.Fprintf(stdout, "Stored run in %s\n", db)
		}
		return nil
	})
}
