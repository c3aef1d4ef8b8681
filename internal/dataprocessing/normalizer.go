package dataprocessing

import (
	"sort"

	"incidentcli/pkg/contracts/domain"
)

// LabelNormalizer maps literal label variants onto canonical labels.
// Matching is exact. Unknown labels pass through unchanged.
type LabelNormalizer struct {
	lookup map[string]string
}

// NewLabelNormalizer builds a normalizer from canonical label -> variants.
// A variant listed under more than one canonical label belongs to the one
// that sorts first.
func NewLabelNormalizer(variants map[string][]string) *LabelNormalizer {
	canonicals := make([]string, 0, len(variants))
	for c := range variants {
		canonicals = append(canonicals, c)
	}
	sort.Strings(canonicals)

	lookup := make(map[string]string)
	for _, c := range canonicals {
		for _, v := range variants[c] {
			if _, taken := lookup[v]; !taken {
				lookup[v] = c
			}
		}
	}
	return &LabelNormalizer{lookup: lookup}
}

// NewPriorityNormalizer builds a normalizer for priority labels.
func NewPriorityNormalizer(variants map[domain.Priority][]string) *LabelNormalizer {
	if variants == nil {
		variants = domain.DefaultPriorityVariants()
	}
	m := make(map[string][]string, len(variants))
	for p, v := range variants {
		m[string(p)] = v
	}
	return NewLabelNormalizer(m)
}

// Normalize returns the canonical label for label, or label itself when no
// variant matches. A missing label stays missing.
func (n *LabelNormalizer) Normalize(label string) string {
	if IsMissing(label) {
		return label
	}
	if canonical, ok := n.lookup[label]; ok {
		return canonical
	}
	return label
}

// Apply normalizes every cell of column and returns the new table with the
// number of cells rewritten and the number of non-missing cells left
// unrecognized. ok is false when the column is absent.
func (n *LabelNormalizer) Apply(t *Table, column string) (out *Table, changed, unknown int, ok bool) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return t, 0, 0, false
	}

	out = t.Clone()
	for _, row := range out.Rows {
		cell := row[idx]
		if IsMissing(cell) {
			continue
		}
		canonical, known := n.lookup[cell]
		if !known {
			unknown++
			continue
		}
		if canonical != cell {
			row[idx] = canonical
			changed++
		}
	}
	return out, changed, unknown, true
}
