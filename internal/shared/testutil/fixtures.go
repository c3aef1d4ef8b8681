package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// IncidentHeader is the column layout produced by the generator.
var IncidentHeader = []string{
	"number",
	"first_opened_at",
	"last_resolved_at",
	"last_closed_at",
	"final_state",
	"final_priority",
	"assignment_group_mode",
	"events_count",
	"resolution_hours",
}

// FiveRowScenario is the canonical end-to-end example: an exact duplicate,
// a resolved-before-opened row, a lowercase label, a negative duration and
// one clean row. Three rows survive cleaning.
const FiveRowScenario = `number,first_opened_at,last_resolved_at,final_priority,resolution_hours
INC100,2024-01-01 00:00,2024-01-01 05:00,critical,999
INC100,2024-01-01 00:00,2024-01-01 05:00,critical,999
INC200,2024-01-02 10:00,2024-01-02 08:00,P2,7.5
INC300,2024-01-03 10:00,2024-01-03 00:00,3 - Moderate,-10
INC400,2024-01-04 09:00,2024-01-04 12:00,Low,3
`

// CSV joins rows into comma separated text with a trailing newline.
func CSV(rows ...[]string) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteFixture writes content to name inside a fresh temp directory and
// returns the full path.
func WriteFixture(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// ReadFile returns the contents of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
