package dataprocessing

import (
	"strconv"
	"strings"
)

// Deduplicate removes rows identical to an earlier row across every column.
// The first occurrence is kept and survivor order is preserved. The input is
// not modified.
func Deduplicate(t *Table) (*Table, int) {
	out := &Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, 0, len(t.Rows)),
	}

	seen := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}

	return out, len(t.Rows) - len(out.Rows)
}

// rowKey length-prefixes every cell so that no two distinct rows share a key.
func rowKey(row []string) string {
	var b strings.Builder
	for _, cell := range row {
		b.WriteString(strconv.Itoa(len(cell)))
		b.WriteByte(':')
		b.WriteString(cell)
	}
	return b.String()
}
