package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"incidentcli/internal/app"
	"incidentcli/internal/dataprocessing"
	"incidentcli/internal/exporter"
	"incidentcli/internal/validation"
	"incidentcli/pkg/contracts"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("report", flag.ContinueOnError)
	inPath := flags.String("in", "", "cleaned CSV (defaults to data/incidents_clean.csv)")
	outPath := flags.String("out", "", "report workbook (defaults to data/reports/incident_report.xlsx)")
	jsonPath := flags.String("json", "", "summary JSON (defaults to data/reports/summary.json)")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("report"))
		return nil
	}

	a, err := app.NewApplication("report")
	if err != nil {
		return err
	}

	in := a.Resolve(*inPath)
	if in == "" {
		in = a.Paths.CleanCSV
	}
	workbook := a.Resolve(*outPath)
	if workbook == "" {
		workbook = a.Paths.ReportWorkbook
	}
	summaryPath := a.Resolve(*jsonPath)
	if summaryPath == "" {
		summaryPath = a.Paths.SummaryJSON
	}

	return a.Run(func(ctx context.Context) error {
		validator := validation.NewFileValidator(a.Logger)
		if err := validator.ValidateTableFile(in); err != nil {
			return err
		}
		if err := validator.ValidateWorkbookPath(workbook); err != nil {
			return err
		}

		table, err := dataprocessing.LoadCSV(in, dataprocessing.LoadOptions{})
		if err != nil {
			return err
		}

		opts := dataprocessing.OptionsFromConfig(a.Config.Pipeline)
		charts := dataprocessing.BuildChartData(table, opts.Thresholds)
		summarizer := dataprocessing.NewSummarizer(a.Logger, dataprocessing.DefaultSummarizerConfig())
		summary := summarizer.Summarize(ctx, table, in)

		// Both writers only read charts and summary.
		var g errgroup.Group
		g.Go(func() error {
			return exporter.NewWorkbookExporter(a.Logger).Export(workbook, charts)
		})
		g.Go(func() error {
			return summarizer.WriteJSON(ctx, summaryPath, summary)
		})
		if err := g.Wait(); err != nil {
			return err
		}

		a.Logger.InfoContext(ctx, "Report written",
			slog.String("workbook", workbook),
			slog.String("summary", summaryPath),
			slog.Int("incidents", table.Len()))
		fmt.Fprintf(stdout, "Saved workbook to %s\n", workbook)
		fmt.Fprintf(stdout, "Saved JSON summary to %s\n", summaryPath)
		return nil
	})
}
