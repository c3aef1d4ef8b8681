package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentcli/internal/dataprocessing"
	"incidentcli/internal/shared/testutil"
	"incidentcli/internal/store"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-version"}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "clean v"))
}

func TestRun_CleansAndStores(t *testing.T) {
	base := t.TempDir()
	t.Setenv("INCIDENT_PATHS_BASE_DIR", base)

	in := testutil.WriteFixture(t, "incidents_dirty.csv", testutil.FiveRowScenario)
	out := filepath.Join(base, "clean.csv")
	db := filepath.Join(base, "runs.db")
	metrics := filepath.Join(base, "pipeline.prom")

	var stdout bytes.Buffer
	err := run([]string{"-in", in, "-out", out, "-db", db, "-metrics", metrics}, &stdout)
	require.NoError(t, err)

	progress := stdout.String()
	assert.Contains(t, progress, "Stage 1/9 load: rows=5 -> 5")
	assert.Contains(t, progress, "Wrote 3 rows to "+out)
	assert.Contains(t, progress, "Stored run in "+db)

	table, err := dataprocessing.LoadCSV(out, dataprocessing.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pipeline_stage_rows_in")

	s, err := store.Open(context.Background(), db, nil)
	require.NoError(t, err)
	defer s.Close()

	// The run id is printed on the summary line.
	line := progress[strings.Index(progress, "Run "):]
	runID := strings.Fields(line)[1]
	runID = strings.TrimSuffix(runID, ":")

	stored, err := s.Incidents(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "INC400", stored[2].Number)
}

func TestRun_MissingInput(t *testing.T) {
	base := t.TempDir()
	t.Setenv("INCIDENT_PATHS_BASE_DIR", base)

	var stdout bytes.Buffer
	err := run([]string{"-in", filepath.Join(base, "nope.csv")}, &stdout)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(base, "data", "incidents_clean.csv"))
}
