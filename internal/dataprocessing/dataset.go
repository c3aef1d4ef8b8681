package dataprocessing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"incidentcli/pkg/contracts/domain"
)

// Dataset is the typed incident table passed between cleaning stages.
// Stages never modify their input; each returns a new Dataset.
type Dataset struct {
	columns map[string]bool
	Records []domain.Incident
}

// NewDataset builds a dataset over records carrying the given columns.
func NewDataset(columns []string, records []domain.Incident) Dataset {
	ds := Dataset{columns: make(map[string]bool, len(columns)), Records: records}
	for _, c := range columns {
		ds.columns[c] = true
	}
	return ds
}

// Has reports whether the dataset carries column.
func (d Dataset) Has(column string) bool {
	return d.columns[column]
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Records)
}

// Columns returns the output columns in write order: the kept source
// columns that are present, followed by the derived columns that were
// computed.
func (d Dataset) Columns() []string {
	var out []string
	for _, c := range domain.KeptColumns {
		if d.columns[c] {
			out = append(out, c)
		}
	}
	for _, c := range domain.DerivedColumns {
		if d.columns[c] {
			out = append(out, c)
		}
	}
	return out
}

// ResolutionValues returns the non-null resolution hours in record order.
func (d Dataset) ResolutionValues() []float64 {
	var out []float64
	for _, r := range d.Records {
		if r.ResolutionHours != nil {
			out = append(out, *r.ResolutionHours)
		}
	}
	return out
}

func (d Dataset) derive(records []domain.Incident, added ...string) Dataset {
	cols := make(map[string]bool, len(d.columns)+len(added))
	for c, ok := range d.columns {
		cols[c] = ok
	}
	for _, c := range added {
		cols[c] = true
	}
	return Dataset{columns: cols, Records: records}
}

func (d Dataset) cloneRecords() []domain.Incident {
	out := make([]domain.Incident, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Clone()
	}
	return out
}

// Decode converts the raw table into typed incidents. Timestamp cells are
// parsed with ParseTimestamp; events_count is read as an integer. Values
// that fail to parse become null and are counted per column in failures.
func Decode(t *Table) (ds Dataset, failures map[string]int) {
	failures = make(map[string]int)

	var present []string
	idx := make(map[string]int, len(domain.KeptColumns))
	for _, c := range domain.KeptColumns {
		if i := t.ColumnIndex(c); i >= 0 {
			idx[c] = i
			present = append(present, c)
		}
	}

	cell := func(row []string, column string) (string, bool) {
		i, ok := idx[column]
		if !ok || IsMissing(row[i]) {
			return "", false
		}
		return row[i], true
	}

	parseTime := func(row []string, column string) *time.Time {
		raw, ok := cell(row, column)
		if !ok {
			return nil
		}
		ts := ParseTimestamp(raw)
		if ts == nil {
			failures[column]++
		}
		return ts
	}

	records := make([]domain.Incident, 0, len(t.Rows))
	for _, row := range t.Rows {
		var inc domain.Incident

		inc.Number, _ = cell(row, domain.ColumnNumber)
		inc.State, _ = cell(row, domain.ColumnState)
		inc.OpenedAt = parseTime(row, domain.ColumnOpenedAt)
		inc.ResolvedAt = parseTime(row, domain.ColumnResolvedAt)
		inc.ClosedAt = parseTime(row, domain.ColumnClosedAt)

		if v, ok := cell(row, domain.ColumnPriority); ok {
			inc.Priority = domain.Ptr(v)
		}
		if v, ok := cell(row, domain.ColumnAssignmentGroup); ok {
			inc.AssignmentGroup = domain.Ptr(v)
		}
		if v, ok := cell(row, domain.ColumnEventsCount); ok {
			if n, ok := parseCount(v); ok {
				inc.EventsCount = &n
			} else {
				failures[domain.ColumnEventsCount]++
			}
		}
		if v, ok := cell(row, domain.ColumnResolutionHours); ok {
			inc.StoredResolutionHours = domain.Ptr(v)
		}

		records = append(records, inc)
	}

	return NewDataset(present, records), failures
}

// parseCount reads an integer, accepting integral floats such as "3.0".
func parseCount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// ParseNumber coerces s to a finite float, or returns nil when it is not
// numeric. NaN and infinities count as missing.
func ParseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
