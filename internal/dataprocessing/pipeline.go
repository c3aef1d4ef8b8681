package dataprocessing

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"incidentcli/internal/errors"
	"incidentcli/internal/exporter"
	"incidentcli/internal/infrastructure"
	"incidentcli/internal/validation"
	"incidentcli/pkg/contracts/domain"
)

// Pipeline runs the cleaning stages over one incident file
type Pipeline struct {
	logger     *slog.Logger
	opts       Options
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
	writer     *exporter.CSVWriter
	validator  *validation.FileValidator
	normalizer *LabelNormalizer
	progress   io.Writer
	sink       RunSink
}

// RunSink persists a finished run together with its cleaned incidents.
type RunSink interface {
	SaveRun(ctx context.Context, run *domain.PipelineRun, incidents []domain.Incident) error
}

// PipelineOption customizes a Pipeline
type PipelineOption func(*Pipeline)

// WithTracer sets the tracer used for run and stage spans.
func WithTracer(tracer trace.Tracer) PipelineOption {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithMetrics records stage metrics on m.
func WithMetrics(m *infrastructure.PipelineMetrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithProgress writes one human readable line per stage to w.
func WithProgress(w io.Writer) PipelineOption {
	return func(p *Pipeline) {
		if w != nil {
			p.progress = w
		}
	}
}

// WithSink hands every successful run to s after the output is written.
func WithSink(s RunSink) PipelineOption {
	return func(p *Pipeline) {
		p.sink = s
	}
}

// NewPipeline creates a pipeline with the given options
func NewPipeline(logger *slog.Logger, opts Options, options ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		logger:     logger.With(slog.String("component", "pipeline")),
		opts:       opts,
		tracer:     noop.NewTracerProvider().Tracer("incident-prep"),
		writer:     exporter.NewCSVWriter(logger),
		validator:  validation.NewFileValidator(logger),
		normalizer: NewPriorityNormalizer(opts.PriorityVariants),
		progress:   io.Discard,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Run loads inputPath, cleans it and writes the result to outputPath. Any
// error aborts the run before the output file is created or replaced.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (run *domain.PipelineRun, err error) {
	ctx = infrastructure.EnsureRunID(ctx)
	run = p.newRun(ctx, inputPath, outputPath)

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("run.id", run.RunID),
		attribute.String("input.path", inputPath),
		attribute.String("output.path", outputPath),
	))
	defer func() {
		run.FinishedAt = time.Now().UTC()
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		infrastructure.RecordRun(ctx, p.metrics, err)
		span.End()
	}()

	p.logger.InfoContext(ctx, "Pipeline started",
		slog.String("input", inputPath),
		slog.String("output", outputPath))

	if err := p.validator.ValidateTableFile(inputPath); err != nil {
		return run, err
	}
	if err := p.validator.ValidateOutputDirectory(filepath.Dir(outputPath)); err != nil {
		return run, err
	}

	var table *Table
	err = p.runStage(ctx, run, StageLoad, func(context.Context) (int, int, error) {
		t, err := LoadCSV(inputPath, LoadOptions{Delimiter: p.opts.Delimiter})
		if err != nil {
			return 0, 0, err
		}
		table = t
		return t.Len(), t.Len(), nil
	})
	if err != nil {
		return run, err
	}
	run.RowsRead = table.Len()

	ds, err := p.process(ctx, run, table)
	if err != nil {
		return run, err
	}

	if ds.Len() == 0 {
		if p.opts.FailOnEmpty {
			return run, errors.NewValidationError("no rows survived cleaning", errors.ErrEmptyOutput).
				WithContext("rows_read", run.RowsRead)
		}
		p.logger.WarnContext(ctx, "Pipeline produced no rows, writing header only",
			slog.Int("rows_read", run.RowsRead))
	}

	header, rows := Encode(ds)
	if err := p.writer.WriteCSV(outputPath, exporter.WriteOptions{
		Headers:   header,
		Records:   rows,
		BOMPrefix: p.opts.OutputBOM,
	}); err != nil {
		return run, err
	}
	run.RowsWritten = len(rows)

	if p.sink != nil {
		run.FinishedAt = time.Now().UTC()
		if err := p.sink.SaveRun(ctx, run, ds.Records); err != nil {
			return run, fmt.Errorf("save run %s: %w", run.RunID, err)
		}
	}

	fmt.Fprintf(p.progress, "Wrote %d rows to %s\n", run.RowsWritten, outputPath)
	p.logger.InfoContext(ctx, "Pipeline completed",
		slog.Int("rows_read", run.RowsRead),
		slog.Int("rows_written", run.RowsWritten),
		slog.Duration("elapsed", time.Since(run.StartedAt)))

	return run, nil
}

// Process runs every stage after loading over table and returns the
// cleaned dataset. table is not modified.
func (p *Pipeline) Process(ctx context.Context, table *Table) (Dataset, *domain.PipelineRun, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	run := p.newRun(ctx, "", "")
	run.RowsRead = table.Len()

	ds, err := p.process(ctx, run, table)
	run.FinishedAt = time.Now().UTC()
	if err != nil {
		return Dataset{}, run, err
	}
	run.RowsWritten = ds.Len()
	return ds, run, nil
}

func (p *Pipeline) newRun(ctx context.Context, inputPath, outputPath string) *domain.PipelineRun {
	return &domain.PipelineRun{
		RunID:         infrastructure.GetRunID(ctx),
		InputPath:     inputPath,
		OutputPath:    outputPath,
		ParseFailures: make(map[string]int),
		StartedAt:     time.Now().UTC(),
	}
}

func (p *Pipeline) process(ctx context.Context, run *domain.PipelineRun, table *Table) (Dataset, error) {
	var ds Dataset

	steps := []struct {
		name string
		fn   func(context.Context) (int, int, error)
	}{
		{StageDeduplicate, func(ctx context.Context) (int, int, error) {
			in := table.Len()
			out, removed := Deduplicate(table)
			table = out
			p.logger.DebugContext(ctx, "Duplicates removed", slog.Int("removed", removed))
			return in, table.Len(), nil
		}},
		{StageNormalize, func(ctx context.Context) (int, int, error) {
			out, changed, unknown, ok := p.normalizer.Apply(table, domain.ColumnPriority)
			if !ok {
				return table.Len(), table.Len(), errors.NewMissingColumnError(StageNormalize, domain.ColumnPriority)
			}
			table = out
			if unknown > 0 {
				p.logger.InfoContext(ctx, "Unrecognized priority labels kept as is",
					slog.Int("count", unknown))
			}
			p.logger.DebugContext(ctx, "Priority labels normalized", slog.Int("changed", changed))
			return table.Len(), table.Len(), nil
		}},
		{StageParseTimes, func(ctx context.Context) (int, int, error) {
			var failures map[string]int
			ds, failures = Decode(table)
			for _, column := range sortedKeys(failures) {
				n := failures[column]
				run.ParseFailures[column] += n
				infrastructure.RecordParseFailures(ctx, p.metrics, column, n)
				p.logger.InfoContext(ctx, "Unparseable values set to null",
					slog.String("column", column),
					slog.Int("count", n))
			}
			for _, column := range []string{domain.ColumnOpenedAt, domain.ColumnResolvedAt, domain.ColumnClosedAt} {
				if !ds.Has(column) {
					p.logger.WarnContext(ctx, "Timestamp column missing", slog.String("column", column))
				}
			}
			return table.Len(), ds.Len(), nil
		}},
		{StageRetention, func(context.Context) (int, int, error) {
			in := ds.Len()
			out, err := DropMissingOpened(ds)
			if err != nil {
				return in, in, err
			}
			ds = out
			return in, ds.Len(), nil
		}},
		{StageConsistency, func(ctx context.Context) (int, int, error) {
			in := ds.Len()
			out, fixed, err := FixTemporalOrder(ds)
			if err != nil {
				return in, in, err
			}
			ds = out
			p.logger.DebugContext(ctx, "Resolved timestamps before opened nulled", slog.Int("count", fixed))
			return in, ds.Len(), nil
		}},
		{StageDuration, func(ctx context.Context) (int, int, error) {
			in := ds.Len()
			out, computed, err := ReconcileDurations(ds)
			if err != nil {
				return in, in, err
			}
			ds = out
			p.logger.DebugContext(ctx, "Durations reconciled", slog.Int("from_timestamps", computed))
			return in, ds.Len(), nil
		}},
		{StageClamp, func(ctx context.Context) (int, int, error) {
			in := ds.Len()
			out, res, err := ClampOutliers(ds, p.opts.ClampQuantile)
			if err != nil {
				return in, in, err
			}
			ds = out
			run.ValuesClamped = res.Clamped
			if res.Cap != nil {
				run.ClampCap = res.Cap
				infrastructure.RecordClamp(ctx, p.metrics, *res.Cap, res.Clamped)
				p.logger.InfoContext(ctx, "Resolution hours clamped",
					slog.Float64("quantile", p.opts.ClampQuantile),
					slog.Float64("cap_hours", *res.Cap),
					slog.Int("clamped", res.Clamped),
					slog.Int("negative_dropped", res.Dropped))
			}
			return in, ds.Len(), nil
		}},
		{StageFeatures, func(context.Context) (int, int, error) {
			in := ds.Len()
			out, err := DeriveFeatures(ds, p.opts.Thresholds)
			if err != nil {
				return in, in, err
			}
			ds = out
			return in, ds.Len(), nil
		}},
	}

	for _, step := range steps {
		if err := p.runStage(ctx, run, step.name, step.fn); err != nil {
			return Dataset{}, err
		}
	}
	return ds, nil
}

// runStage times fn, records its span, metrics, log line and progress
// line. A missing-column error marks the stage skipped and is not returned.
func (p *Pipeline) runStage(ctx context.Context, run *domain.PipelineRun, name string,
	fn func(context.Context) (rowsIn, rowsOut int, err error)) error {
	pos := stagePosition(name)
	total := len(StageNames)

	ctx, span := p.tracer.Start(ctx, "stage."+name)
	defer span.End()

	start := time.Now()
	rowsIn, rowsOut, err := fn(ctx)
	elapsed := time.Since(start)

	stat := domain.StageStat{Name: name, RowsIn: rowsIn, RowsOut: rowsOut, Duration: elapsed}

	if err != nil {
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) || appErr.Type != errors.ErrTypeMissingColumn {
			infrastructure.RecordError(ctx, err)
			p.logger.ErrorContext(ctx, "Stage failed",
				slog.String("stage", name),
				slog.String("error", err.Error()))
			return fmt.Errorf("stage %s: %w", name, err)
		}

		columns, _ := appErr.Context["columns"].([]string)
		stat.Skipped = true
		stat.RowsOut = rowsIn
		run.Stages = append(run.Stages, stat)

		span.SetAttributes(attribute.Bool("stage.skipped", true))
		p.logger.WarnContext(ctx, "Stage skipped, required column missing",
			slog.String("stage", name),
			slog.Any("columns", columns))
		fmt.Fprintf(p.progress, "Stage %d/%d %s: skipped (missing %s)\n",
			pos, total, name, strings.Join(columns, ", "))
		return nil
	}

	run.Stages = append(run.Stages, stat)
	span.SetAttributes(
		attribute.Int("rows.in", rowsIn),
		attribute.Int("rows.out", rowsOut),
	)
	infrastructure.RecordStageMetrics(ctx, p.metrics, name, rowsIn, rowsOut, elapsed)
	p.logger.InfoContext(ctx, "Stage completed",
		slog.String("stage", name),
		slog.Int("rows_in", rowsIn),
		slog.Int("rows_out", rowsOut),
		slog.Duration("elapsed", elapsed))
	fmt.Fprintf(p.progress, "Stage %d/%d %s: rows=%d -> %d (%s)\n",
		pos, total, name, rowsIn, rowsOut, elapsed.Round(time.Microsecond))
	return nil
}

func stagePosition(name string) int {
	for i, s := range StageNames {
		if s == name {
			return i + 1
		}
	}
	return 0
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
