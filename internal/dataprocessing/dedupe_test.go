package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicate(t *testing.T) {
	table := &Table{
		Header: []string{"number", "final_priority"},
		Rows: [][]string{
			{"INC1", "P1"},
			{"INC2", "Low"},
			{"INC1", "P1"},
			{"INC1", "P2"},
			{"INC2", "Low"},
			{"INC3", ""},
			{"INC3", ""},
		},
	}

	out, removed := Deduplicate(table)

	assert.Equal(t, 3, removed)
	assert.Equal(t, [][]string{
		{"INC1", "P1"},
		{"INC2", "Low"},
		{"INC1", "P2"},
		{"INC3", ""},
	}, out.Rows)
	assert.Len(t, table.Rows, 7, "input must not be modified")
}

func TestDeduplicate_Idempotent(t *testing.T) {
	table := &Table{
		Header: []string{"a", "b"},
		Rows: [][]string{
			{"1", "2"}, {"1", "2"}, {"2", "1"}, {"", ""}, {"", ""}, {"2", "1"},
		},
	}

	once, _ := Deduplicate(table)
	twice, removed := Deduplicate(once)

	assert.Zero(t, removed)
	assert.Equal(t, once.Rows, twice.Rows)
}

func TestDeduplicate_NoKeyCollisions(t *testing.T) {
	// Naive joining of cells would make these two rows identical.
	table := &Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"x,y", "z"}, {"x", "y,z"}},
	}

	out, removed := Deduplicate(table)
	assert.Zero(t, removed)
	assert.Equal(t, 2, out.Len())
}
