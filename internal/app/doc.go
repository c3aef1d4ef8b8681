// Package app wires the pieces every command shares.
//
// NewApplication loads configuration (defaults, then config.yaml, then
// INCIDENT_* environment variables), resolves and creates the data layout,
// initializes the global slog logger and the OpenTelemetry providers. Run
// gives the command a cancellable context tagged with a run id and, once it
// returns, writes the Prometheus textfile and shuts telemetry down.
//
//	a, err := app.NewApplication("clean")
//	if err != nil {
//		fmt.Fprintln(os.Stderr, err)
//		os.Exit(1)
//	}
//	err = a.Run(func(ctx context.Context) error {
//		_, err := pipeline.Run(ctx, in, out)
//		return err
//	})
package app
