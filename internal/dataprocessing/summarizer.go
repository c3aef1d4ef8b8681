package dataprocessing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"incidentcli/internal/errors"
	"incidentcli/internal/files"
	"incidentcli/pkg/contracts/domain"
)

// SummaryFormat tags the JSON summary document.
const SummaryFormat = "incident_summary_v1"

// missingLabel is how a missing category is shown in the summary.
const missingLabel = "NaN"

// Summarizer describes a cleaned incident file
type Summarizer struct {
	logger *slog.Logger
	files  *files.Manager
	topN   int
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	// TopN is how many of the longest resolution times are listed.
	TopN int
}

// DefaultSummarizerConfig returns the default configuration.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{TopN: 5}
}

// NewSummarizer creates a new summarizer with the given configuration.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopN <= 0 {
		config.TopN = DefaultSummarizerConfig().TopN
	}
	return &Summarizer{
		logger: logger.With(slog.String("component", "summarizer")),
		files:  files.NewManager(logger),
		topN:   config.TopN,
	}
}

// SummarizeFile loads the cleaned file at path and summarizes it.
func (s *Summarizer) SummarizeFile(ctx context.Context, path string) (*domain.IncidentSummary, error) {
	t, err := LoadCSV(path, LoadOptions{})
	if err != nil {
		return nil, err
	}
	return s.Summarize(ctx, t, path), nil
}

// Summarize computes the descriptive summary of a cleaned table. Columns
// that are absent leave their section empty.
func (s *Summarizer) Summarize(ctx context.Context, t *Table, source string) *domain.IncidentSummary {
	sum := &domain.IncidentSummary{
		Source:         source,
		GeneratedAt:    time.Now().UTC(),
		TotalIncidents: t.Len(),
	}

	if priorities := t.Column(domain.ColumnPriority); priorities != nil {
		sum.ByPriority = countCategories(priorities, func(cell string) string {
			if IsMissing(cell) {
				return missingLabel
			}
			return cell
		})
		sortByCount(sum.ByPriority)
	} else {
		s.logger.WarnContext(ctx, "Column missing from summary input",
			slog.String("column", domain.ColumnPriority))
	}

	if flags := t.Column(domain.ColumnSLABreached); flags != nil {
		sum.SLA = countCategories(flags, func(cell string) string {
			switch flag := ParseNumber(cell); {
			case flag == nil:
				return "missing"
			case *flag != 0:
				return "breached (1)"
			default:
				return "not breached (0)"
			}
		})
		sortByCount(sum.SLA)
	} else {
		s.logger.WarnContext(ctx, "Column missing from summary input",
			slog.String("column", domain.ColumnSLABreached))
	}

	if quick := numericValues(t.Column(domain.ColumnQuickResolution)); len(quick) > 0 {
		pct := stat.Mean(quick, nil) * 100
		sum.QuickResolutionPercent = &pct
	}

	sum.Resolution = s.resolutionStats(numericValues(t.Column(domain.ColumnResolutionHours)))

	s.logger.InfoContext(ctx, "Summary computed",
		slog.String("source", source),
		slog.Int("total_incidents", sum.TotalIncidents),
		slog.Int("resolution_values", sum.Resolution.Count))

	return sum
}

func (s *Summarizer) resolutionStats(values []float64) domain.ResolutionStats {
	rs := domain.ResolutionStats{Count: len(values)}
	if len(values) == 0 {
		return rs
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean := stat.Mean(sorted, nil)
	median := quantileSorted(sorted, 0.5)
	p90 := quantileSorted(sorted, 0.9)
	p99 := quantileSorted(sorted, 0.99)
	rs.Mean, rs.Median, rs.P90, rs.P99 = &mean, &median, &p90, &p99

	n := min(s.topN, len(sorted))
	rs.Longest = make([]float64, n)
	for i := 0; i < n; i++ {
		rs.Longest[i] = sorted[len(sorted)-1-i]
	}
	return rs
}

// WriteText prints the summary in a human readable layout.
func (s *Summarizer) WriteText(w io.Writer, sum *domain.IncidentSummary) error {
	ew := &errWriter{w: w}

	ew.printf("Total incidents: %d\n", sum.TotalIncidents)

	ew.printf("\nBy priority:\n")
	for _, c := range sum.ByPriority {
		ew.printf("  %-16s %6d  %6.2f%%\n", c.Label, c.Count, c.Percent)
	}

	ew.printf("\nSLA:\n")
	for _, c := range sum.SLA {
		ew.printf("  %-16s %6d  %6.2f%%\n", c.Label, c.Count, c.Percent)
	}

	if sum.QuickResolutionPercent != nil {
		ew.printf("\nQuick resolution: %.2f%%\n", *sum.QuickResolutionPercent)
	} else {
		ew.printf("\nQuick resolution: n/a\n")
	}

	rs := sum.Resolution
	ew.printf("\nResolution hours (n=%d):\n", rs.Count)
	if rs.Count > 0 {
		ew.printf("  mean    %10.2f\n", *rs.Mean)
		ew.printf("  median  %10.2f\n", *rs.Median)
		ew.printf("  p90     %10.2f\n", *rs.P90)
		ew.printf("  p99     %10.2f\n", *rs.P99)
		ew.printf("  longest")
		for _, v := range rs.Longest {
			ew.printf(" %.2f", v)
		}
		ew.printf("\n")
	}

	return ew.err
}

// summaryDocument is the JSON file layout.
type summaryDocument struct {
	Format  string                  `json:"format"`
	Summary *domain.IncidentSummary `json:"summary"`
}

// WriteJSON writes the summary to path atomically.
func (s *Summarizer) WriteJSON(ctx context.Context, path string, sum *domain.IncidentSummary) error {
	s.logger.InfoContext(ctx, "Writing summary JSON",
		slog.String("path", path))

	err := s.files.WriteAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaryDocument{Format: SummaryFormat, Summary: sum})
	})
	if err != nil {
		return errors.NewStorageError("failed to write summary JSON", err).WithContext("path", path)
	}
	return nil
}

func countCategories(cells []string, label func(string) string) []domain.CategoryCount {
	counts := make(map[string]int)
	var order []string
	for _, cell := range cells {
		l := label(cell)
		if _, seen := counts[l]; !seen {
			order = append(order, l)
		}
		counts[l]++
	}

	out := make([]domain.CategoryCount, 0, len(order))
	for _, l := range order {
		out = append(out, domain.CategoryCount{
			Label:   l,
			Count:   counts[l],
			Percent: float64(counts[l]) / float64(len(cells)) * 100,
		})
	}
	return out
}

// sortByCount orders by descending count, then label.
func sortByCount(c []domain.CategoryCount) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Count != c[j].Count {
			return c[i].Count > c[j].Count
		}
		return c[i].Label < c[j].Label
	})
}

func numericValues(cells []string) []float64 {
	var out []float64
	for _, cell := range cells {
		if v := ParseNumber(cell); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
