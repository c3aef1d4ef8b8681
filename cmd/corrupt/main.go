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
	"incidentcli/internal/dataprocessing"
	"incidentcli/internal/exporter"
	"incidentcli/internal/synth"
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
	flags := flag.NewFlagSet("corrupt", flag.ContinueOnError)
	inPath := flags.String("in", "", "clean input CSV (defaults to data/incidents_aggregated_5k.csv)")
	outPath := flags.String("out", "", "dirty output CSV (defaults to data/incidents_dirty.csv)")
	seed := flags.Uint64("seed", config.DefaultGenerateSeed, "random seed")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("corrupt"))
		return nil
	}

	a, err := app.NewApplication("corrupt")
	if err != nil {
		return err
	}

	in := a.Resolve(*inPath)
	if in == "" {
		in = a.Paths.RawCSV
	}
	out := a.Resolve(*outPath)
	if out == "" {
		out = a.Paths.DirtyCSV
	}

	return a.Run(func(ctx context.Context) error {
		if err := validation.NewFileValidator(a.Logger).ValidateTableFile(in); err != nil {
			return err
		}
		table, err := dataprocessing.LoadCSV(in, dataprocessing.LoadOptions{})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Loaded source: %s\n", in)
		fmt.Fprintf(stdout, "- starting rows: %d\n", table.Len())

		cfg := synth.DefaultCorruptConfig()
		cfg.Seed = *seed
		dirty, report := synth.Corrupt(table, cfg)

		for _, inj := range report {
			fmt.Fprintf(stdout, "Injected %s: %d rows\n", inj.Step, inj.Count)
			a.Logger.DebugContext(ctx, "Corruption applied",
				slog.String("step", inj.Step),
				slog.Int("rows", inj.Count))
		}

		w := exporter.NewCSVWriter(a.Logger)
		if err := w.WriteCSV(out, exporter.WriteOptions{Headers: dirty.Header, Records: dirty.Rows}); err != nil {
			return err
		}

		a.Logger.InfoContext(ctx, "Dirty dataset written",
			slog.String("path", out),
			slog.Int("rows", dirty.Len()))
		fmt.Fprintf(stdout, "Wrote dirty dataset to %s\n", out)
		fmt.Fprintf(stdout, "Rows (including dupes): %d\n", dirty.Len())
		return nil
	})
}
