package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"incidentcli/internal/app"
	"incidentcli/internal/dataprocessing"
	"incidentcli/pkg/contracts"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("summary", flag.ContinueOnError)
	inPath := flags.String("in", "", "cleaned CSV (defaults to data/incidents_clean.csv)")
	jsonPath := flags.String("json", "", "also write the summary as JSON to this path")
	topN := flags.Int("top", dataprocessing.DefaultSummarizerConfig().TopN, "number of longest resolutions to list")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString("summary"))
		return nil
	}

	a, err := app.NewApplication("summary")
	if err != nil {
		return err
	}

	in := a.Resolve(*inPath)
	if in == "" {
		in = a.Paths.CleanCSV
	}
	jsonOut := a.Resolve(*jsonPath)

	return a.Run(func(ctx context.Context) error {
		s := dataprocessing.NewSummarizer(a.Logger, dataprocessing.SummarizerConfig{TopN: *topN})

		sum, err := s.SummarizeFile(ctx, in)
		if err != nil {
			return err
		}
		if err := s.WriteText(stdout, sum); err != nil {
			return err
		}

		if jsonOut != "" {
			if err := s.WriteJSON(ctx, jsonOut, sum); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "\nSaved JSON summary to %s\n", jsonOut)
		}
		return nil
	})
}
