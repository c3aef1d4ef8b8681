// Package dataprocessing cleans incident exports and describes the result.
//
// # Architecture
//
// A run is a strict sequence of stages over one in-memory table:
//
//  1. load: read the delimited file (LoadCSV, ReadTable)
//  2. deduplicate: drop exact full-row duplicates, first occurrence kept
//  3. normalize_labels: map priority spellings onto the canonical tiers
//  4. parse_timestamps: decode the raw table into typed incidents
//  5. drop_missing_opened: drop incidents without an opened timestamp
//  6. fix_temporal_order: null resolved timestamps earlier than opened
//  7. reconcile_durations: compute resolution_hours
//  8. clamp_outliers: drop negative durations, cap at a high quantile
//  9. derive_features: sla_breached, quick_resolution, priority_rank
//
// Stages 2 and 3 work on the raw Table; from stage 4 on they work on a typed
// Dataset. Every stage returns a new value and leaves its input untouched.
// A stage whose required column is absent reports a MISSING_COLUMN error,
// which the Pipeline logs and treats as a skip.
//
// # Usage
//
//	p := dataprocessing.NewPipeline(logger, dataprocessing.OptionsFromConfig(cfg.Pipeline),
//	    dataprocessing.WithProgress(os.Stdout),
//	    dataprocessing.WithMetrics(metrics))
//	run, err := p.Run(ctx, paths.DirtyCSV, paths.CleanCSV)
//
// Summaries and chart series for a cleaned file:
//
//	s := dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())
//	sum, err := s.SummarizeFile(ctx, paths.CleanCSV)
//	charts := dataprocessing.BuildChartData(table, thresholds)
package dataprocessing
