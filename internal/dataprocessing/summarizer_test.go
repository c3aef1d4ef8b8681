package dataprocessing

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentcli/internal/errors"
	"incidentcli/internal/shared/testutil"
	"incidentcli/pkg/contracts/domain"
)

const cleanedFixture = `number,final_priority,resolution_hours,sla_breached,quick_resolution,priority_rank
INC1,1 - Critical,5.0,0,1,1
INC2,1 - Critical,30.0,1,0,1
INC3,,10.0,0,1,
INC4,4 - Low,,,,4
`

func cleanedTable(t *testing.T) *Table {
	t.Helper()
	table, err := ReadTable(strings.NewReader(cleanedFixture), ',')
	require.NoError(t, err)
	return table
}

func TestNewSummarizer(t *testing.T) {
	tests := []struct {
		name     string
		config   SummarizerConfig
		wantTopN int
	}{
		{name: "default config", config: DefaultSummarizerConfig(), wantTopN: 5},
		{name: "custom top n", config: SummarizerConfig{TopN: 2}, wantTopN: 2},
		{name: "zero falls back", config: SummarizerConfig{}, wantTopN: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSummarizer(nil, tt.config)
			assert.Equal(t, tt.wantTopN, s.topN)
		})
	}
}

func TestSummarize(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	s := NewSummarizer(logger, DefaultSummarizerConfig())

	sum := s.Summarize(context.Background(), cleanedTable(t), "clean.csv")

	assert.Equal(t, "clean.csv", sum.Source)
	assert.Equal(t, 4, sum.TotalIncidents)

	assert.Equal(t, []domain.CategoryCount{
		{Label: "1 - Critical", Count: 2, Percent: 50},
		{Label: "4 - Low", Count: 1, Percent: 25},
		{Label: "NaN", Count: 1, Percent: 25},
	}, sum.ByPriority)

	assert.Equal(t, []domain.CategoryCount{
		{Label: "not breached (0)", Count: 2, Percent: 50},
		{Label: "breached (1)", Count: 1, Percent: 25},
		{Label: "missing", Count: 1, Percent: 25},
	}, sum.SLA)

	require.NotNil(t, sum.QuickResolutionPercent)
	assert.InDelta(t, 66.6667, *sum.QuickResolutionPercent, 1e-3)

	rs := sum.Resolution
	assert.Equal(t, 3, rs.Count)
	assert.InDelta(t, 15, *rs.Mean, 1e-9)
	assert.InDelta(t, 10, *rs.Median, 1e-9)
	assert.InDelta(t, 26, *rs.P90, 1e-9)
	assert.InDelta(t, 29.6, *rs.P99, 1e-9)
	assert.Equal(t, []float64{30, 10, 5}, rs.Longest)
}

func TestSummarize_MissingColumns(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	s := NewSummarizer(logger, DefaultSummarizerConfig())

	table := &Table{Header: []string{"number"}, Rows: [][]string{{"INC1"}}}
	sum := s.Summarize(context.Background(), table, "x.csv")

	assert.Equal(t, 1, sum.TotalIncidents)
	assert.Nil(t, sum.ByPriority)
	assert.Nil(t, sum.SLA)
	assert.Nil(t, sum.QuickResolutionPercent)
	assert.Zero(t, sum.Resolution.Count)
	assert.Nil(t, sum.Resolution.Mean)
	assert.True(t, handler.ContainsMessage("Column missing"))
}

func TestSummarizer_WriteText(t *testing.T) {
	s := NewSummarizer(nil, DefaultSummarizerConfig())
	sum := s.Summarize(context.Background(), cleanedTable(t), "clean.csv")

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf, sum))

	text := buf.String()
	assert.Contains(t, text, "Total incidents: 4")
	assert.Contains(t, text, "1 - Critical")
	assert.Contains(t, text, "Quick resolution: 66.67%")
	assert.Contains(t, text, "longest 30.00 10.00 5.00")
}

func TestSummarizer_WriteJSON(t *testing.T) {
	s := NewSummarizer(nil, DefaultSummarizerConfig())
	sum := s.Summarize(context.Background(), cleanedTable(t), "clean.csv")

	path := filepath.Join(t.TempDir(), "reports", "summary.json")
	require.NoError(t, s.WriteJSON(context.Background(), path, sum))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Format  string                 `json:"format"`
		Summary domain.IncidentSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, SummaryFormat, doc.Format)
	assert.Equal(t, 4, doc.Summary.TotalIncidents)
	assert.Len(t, doc.Summary.ByPriority, 3)
}

func TestSummarizeFile_NotFound(t *testing.T) {
	s := NewSummarizer(nil, DefaultSummarizerConfig())

	_, err := s.SummarizeFile(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestBuildChartData(t *testing.T) {
	data := BuildChartData(cleanedTable(t), FeatureThresholds{SLAHours: 24, QuickHours: 12})

	labels := func(c []domain.CategoryCount) []string {
		var out []string
		for _, x := range c {
			out = append(out, x.Label)
		}
		return out
	}

	assert.Equal(t, []string{"1 - Critical", "4 - Low", "Unknown"}, labels(data.PriorityCounts))
	assert.Equal(t, []string{"Met (<=24h)", "Breached (>24h)", "Missing"}, labels(data.SLACounts))
	assert.Equal(t, StageNames, data.Stages)

	require.NotNil(t, data.ResolutionClip)
	assert.InDelta(t, 29.6, *data.ResolutionClip, 1e-9)
	require.Len(t, data.ResolutionBins, HistogramBins)

	total := 0
	for _, b := range data.ResolutionBins {
		total += b.Count
		assert.Less(t, b.Lower, b.Upper)
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, data.ResolutionBins[HistogramBins-1].Count, "clipped maximum lands in the last bin")
	assert.InDelta(t, 29.6, data.ResolutionBins[HistogramBins-1].Upper, 1e-9)
}

func TestNonFiniteResolutionHours(t *testing.T) {
	table, err := ReadTable(strings.NewReader("number,final_priority,resolution_hours\nINC1,1 - Critical,inf\nINC2,1 - Critical,5.0\nINC3,2 - High,NaN\nINC4,2 - High,7.0\n"), ',')
	require.NoError(t, err)

	data := BuildChartData(table, FeatureThresholds{SLAHours: 24, QuickHours: 12})
	require.NotNil(t, data.ResolutionClip)
	assert.LessOrEqual(t, *data.ResolutionClip, 7.0)
	total := 0
	for _, b := range data.ResolutionBins {
		total += b.Count
	}
	assert.Equal(t, 2, total, "only finite values are binned")

	s := NewSummarizer(nil, DefaultSummarizerConfig())
	sum := s.Summarize(context.Background(), table, "clean.csv")
	assert.Equal(t, 2, sum.Resolution.Count)

	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, s.WriteJSON(context.Background(), path, sum))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{in: "5", want: domain.Ptr(5.0)},
		{in: " 2.5 ", want: domain.Ptr(2.5)},
		{in: "-1e3", want: domain.Ptr(-1000.0)},
		{in: ""},
		{in: "abc"},
		{in: "NaN"},
		{in: "inf"},
		{in: "+Inf"},
		{in: "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.in))
		})
	}
}

func TestBuildChartData_NoResolutionValues(t *testing.T) {
	table := &Table{Header: []string{"number", "resolution_hours"}, Rows: [][]string{{"INC1", ""}}}

	data := BuildChartData(table, FeatureThresholds{SLAHours: 24, QuickHours: 12})
	assert.Nil(t, data.ResolutionClip)
	assert.Empty(t, data.ResolutionBins)
	assert.Nil(t, data.PriorityCounts)
}

func TestHistogram(t *testing.T) {
	t.Run("single distinct value", func(t *testing.T) {
		bins := Histogram([]float64{4, 4, 4}, 3)
		require.Len(t, bins, 3)
		assert.Equal(t, 3.5, bins[0].Lower)
		assert.Equal(t, 4.5, bins[2].Upper)

		total := 0
		for _, b := range bins {
			total += b.Count
		}
		assert.Equal(t, 3, total)
	})

	t.Run("equal width", func(t *testing.T) {
		bins := Histogram([]float64{0, 1, 2, 3, 4}, 2)
		require.Len(t, bins, 2)
		assert.Equal(t, 2, bins[0].Count)
		assert.Equal(t, 3, bins[1].Count)
		assert.Equal(t, 2.0, bins[0].Upper)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, Histogram(nil, 30))
	})
}
