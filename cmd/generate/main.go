package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"incidentcli/internal/app"
	"incidentcli/internal/config"
	"incidentcli/internal/exporter"
	"incidentcli/internal/synth"
	"incidentcli/pkg/contracts"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("generate", flag.ContinueOnError)
	outPath := flags.String("out", "", "output CSV (defaults to data/incidents_aggregated_5k.csv)")
	count := flags.Int("n", config.DefaultGenerateRows, "number of incidents to generate")
	seed := flags.Uint64("seed", config.DefaultGenerateSeed, "random seed")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("generate"))
		return nil
	}
	if *count < 0 {
		return fmt.Errorf("-n must not be negative, got %d", *count)
	}

	a, err := app.NewApplication("generate")
	if err != nil {
		return err
	}

	out := a.Resolve(*outPath)
	if out == "" {
		out = a.Paths.RawCSV
	}

	return a.Run(func(ctx context.Context) error {
		table := synth.Generate(synth.GeneratorConfig{Count: *count, Seed: *seed})

		w := exporter.NewCSVWriter(a.Logger)
		if err := w.WriteCSV(out, exporter.WriteOptions{Headers: table.Header, Records: table.Rows}); err != nil {
			return err
		}

		a.Logger.InfoContext(ctx, "Synthetic dataset written",
			slog.String("path", out),
			slog.Int("rows", table.Len()),
			slog.Uint64("seed", *seed))

		fmt.Fprintf(stdout, "Fake incident dataset created: %s\n", out)
		fmt.Fprintf(stdout, "- rows generated: %d\n", table.Len())
		return nil
	})
}
