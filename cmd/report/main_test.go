package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"incidentcli/internal/errors"
	"incidentcli/internal/exporter"
	"incidentcli/internal/shared/testutil"
)

const cleaned = `number,final_priority,resolution_hours,sla_breached,quick_resolution,priority_rank
INC1,1 - Critical,5.0,0,1,1
INC2,2 - High,30.0,1,0,2
INC3,,12.5,0,0,
`

func TestRun_WritesWorkbookAndSummary(t *testing.T) {
	base := t.TempDir()
	t.Setenv("INCIDENT_PATHS_BASE_DIR", base)

	in := testutil.WriteFixture(t, "incidents_clean.csv", cleaned)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-in", in}, &out))

	workbook := filepath.Join(base, "data", "reports", "incident_report.xlsx")
	assert.FileExists(t, filepath.Join(base, "data", "reports", "summary.json"))

	f, err := excelize.OpenFile(workbook)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		exporter.SheetPriority, exporter.SheetSLA, exporter.SheetResolution, exporter.SheetPipeline,
	}, f.GetSheetList())

	rows, err := f.GetRows(exporter.SheetPriority)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Unknown", rows[3][0])
}

func TestRun_RejectsNonWorkbookOutput(t *testing.T) {
	base := t.TempDir()
	t.Setenv("INCIDENT_PATHS_BASE_DIR", base)

	in := testutil.WriteFixture(t, "incidents_clean.csv", cleaned)

	var out bytes.Buffer
	err := run([]string{"-in", in, "-out", filepath.Join(base, "report.csv")}, &out)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestRun_SummaryFailureKeepsWorkbook(t *testing.T) {
	base := t.TempDir()
	t.Setenv("INCIDENT_PATHS_BASE_DIR", base)

	in := testutil.WriteFixture(t, "incidents_clean.csv", cleaned)
	blocker := filepath.Join(base, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	workbook := filepath.Join(base, "report.xlsx")

	var out bytes.Buffer
	err := run([]string{"-in", in, "-out", workbook, "-json", filepath.Join(blocker, "summary.json")}, &out)
	require.Error(t, err)

	assert.FileExists(t, workbook, "workbook export runs to completion")
	assert.NotContains(t, out.String(), "Saved workbook")
}

func TestRun_InfiniteResolutionHours(t *testing.T) {
	base := t.TempDir()
	t.Setenv("INCIDENT_PATHS_BASE_DIR", base)

	in := testutil.WriteFixture(t, "incidents_clean.csv", cleaned+"INC4,1 - Critical,inf,0,0,1\n")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-in", in}, &out))
	assert.FileExists(t, filepath.Join(base, "data", "reports", "summary.json"))
	assert.FileExists(t, filepath.Join(base, "data", "reports", "incident_report.xlsx"))
}
