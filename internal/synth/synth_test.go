package synth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentcli/internal/dataprocessing"
	"incidentcli/internal/shared/testutil"
	"incidentcli/pkg/contracts/domain"
)

var anchor = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func generate(t *testing.T, n int) *dataprocessing.Table {
	t.Helper()
	return Generate(GeneratorConfig{Count: n, Seed: DefaultSeed, Now: anchor})
}

func cell(t *dataprocessing.Table, row int, column string) string {
	return t.Rows[row][t.ColumnIndex(column)]
}

func TestGenerate(t *testing.T) {
	table := generate(t, 200)

	assert.Equal(t, Header, table.Header)
	require.Equal(t, 200, table.Len())
	assert.Equal(t, "INC100000", cell(table, 0, domain.ColumnNumber))
	assert.Equal(t, "INC100199", cell(table, 199, domain.ColumnNumber))

	for i := range table.Rows {
		opened := dataprocessing.ParseTimestamp(cell(table, i, domain.ColumnOpenedAt))
		resolved := dataprocessing.ParseTimestamp(cell(table, i, domain.ColumnResolvedAt))
		closed := dataprocessing.ParseTimestamp(cell(table, i, domain.ColumnClosedAt))
		require.NotNil(t, opened)
		require.NotNil(t, resolved)
		require.NotNil(t, closed)

		assert.False(t, opened.After(anchor))
		assert.False(t, opened.Before(anchor.Add(-(60*24+23)*time.Hour)))

		hours := resolved.Sub(*opened).Hours()
		assert.GreaterOrEqual(t, hours, 1.0)
		assert.LessOrEqual(t, hours, 72.0)

		stored := dataprocessing.ParseNumber(cell(table, i, domain.ColumnResolutionHours))
		require.NotNil(t, stored)
		assert.Equal(t, hours, *stored)

		gap := closed.Sub(*resolved).Hours()
		assert.GreaterOrEqual(t, gap, 1.0)
		assert.LessOrEqual(t, gap, 5.0)

		assert.True(t, domain.Priority(cell(table, i, domain.ColumnPriority)).IsCanonical())
		assert.Contains(t, AssignmentGroups, cell(table, i, domain.ColumnAssignmentGroup))
		assert.Contains(t, FinalStates, cell(table, i, domain.ColumnState))
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	assert.Equal(t, generate(t, 50), generate(t, 50))

	other := Generate(GeneratorConfig{Count: 50, Seed: 7, Now: anchor})
	assert.NotEqual(t, generate(t, 50).Rows, other.Rows)
}

func TestCorrupt(t *testing.T) {
	clean := generate(t, 2000)
	before := clean.Clone()

	dirty, report := Corrupt(clean, DefaultCorruptConfig())

	assert.Equal(t, before, clean, "input must not be modified")
	assert.Equal(t, 2020, dirty.Len())

	counts := make(map[string]int, len(report))
	for _, inj := range report {
		counts[inj.Step] = inj.Count
	}
	assert.Equal(t, 20, counts[StepDuplicates])
	assert.Equal(t, 40, counts[StepMissingPriority])
	assert.Equal(t, 40, counts[StepMissingGroup])
	assert.Equal(t, 30, counts[StepWeirdDates])
	assert.Equal(t, 6, counts[StepInvalidDates])
	assert.Equal(t, 10, counts[StepNegative])
	assert.Equal(t, 10, counts[StepOutliers])
	assert.LessOrEqual(t, counts[StepPriorityVariant], 20)
	assert.LessOrEqual(t, counts[StepSwap], 10)
	assert.LessOrEqual(t, counts[StepPadding], 20)

	invalid, outliers, padded := 0, 0, 0
	for i := range dirty.Rows {
		if cell(dirty, i, domain.ColumnOpenedAt) == InvalidDate {
			invalid++
		}
		if cell(dirty, i, domain.ColumnResolutionHours) == "9999.0" {
			outliers++
		}
		if g := cell(dirty, i, domain.ColumnAssignmentGroup); g != "" && g[0] == ' ' {
			padded++
		}
	}
	assert.Equal(t, 6, invalid)
	assert.Equal(t, 10, outliers)
	assert.Equal(t, counts[StepPadding], padded)

	again, _ := Corrupt(clean, DefaultCorruptConfig())
	assert.Equal(t, dirty, again)
}

func TestCorrupt_SkipsMissingColumns(t *testing.T) {
	table := &dataprocessing.Table{
		Header: []string{domain.ColumnNumber, domain.ColumnPriority},
		Rows:   [][]string{{"INC1", "1 - Critical"}, {"INC2", "4 - Low"}},
	}

	_, report := Corrupt(table, DefaultCorruptConfig())

	steps := make([]string, 0, len(report))
	for _, inj := range report {
		steps = append(steps, inj.Step)
	}
	assert.Equal(t, []string{StepDuplicates, StepMissingPriority, StepPriorityVariant}, steps)
}

func TestCorruptThenClean(t *testing.T) {
	dirty, _ := Corrupt(generate(t, 1000), DefaultCorruptConfig())

	logger, _ := testutil.NewTestLogger(t)
	p := dataprocessing.NewPipeline(logger, dataprocessing.DefaultOptions())

	ds, run, err := p.Process(context.Background(), dirty)
	require.NoError(t, err)
	assert.Equal(t, dirty.Len(), run.RowsRead)
	assert.LessOrEqual(t, ds.Len(), dirty.Len())
	assert.Greater(t, ds.Len(), 900)

	for _, r := range ds.Records {
		require.NotNil(t, r.OpenedAt)
		if r.ResolvedAt != nil {
			assert.False(t, r.ResolvedAt.Before(*r.OpenedAt), r.Number)
		}
		if r.ResolutionHours != nil {
			assert.GreaterOrEqual(t, *r.ResolutionHours, 0.0)
			assert.Less(t, *r.ResolutionHours, HugeOutlier)
		}
		if r.Priority != nil {
			assert.True(t, domain.Priority(*r.Priority).IsCanonical(), *r.Priority)
			assert.NotNil(t, r.PriorityRank)
		}
	}
}
