package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	date := func(y int, m time.Month, d, h, min, s, ns int) time.Time {
		return time.Date(y, m, d, h, min, s, ns, time.UTC)
	}

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-01 05:00", date(2024, 1, 1, 5, 0, 0, 0)},
		{"2024-01-01 05:00:30", date(2024, 1, 1, 5, 0, 30, 0)},
		{"2024-01-01", date(2024, 1, 1, 0, 0, 0, 0)},
		{"2024-01-01T10:00:00Z", date(2024, 1, 1, 10, 0, 0, 0)},
		{"2024-01-01T10:00:00.250Z", date(2024, 1, 1, 10, 0, 0, 250_000_000)},
		{"2024-01-01T10:00:00+02:00", date(2024, 1, 1, 8, 0, 0, 0)},
		{"2024-01-01T01:00:00-0300", date(2024, 1, 1, 4, 0, 0, 0)},
		{"2024-01-01 05:00:00.123456", date(2024, 1, 1, 5, 0, 0, 123_456_000)},
		{"2024/01/02 10:00", date(2024, 1, 2, 10, 0, 0, 0)},
		{"2024.1.2", date(2024, 1, 2, 0, 0, 0, 0)},
		// compact basic format
		{"20240115", date(2024, 1, 15, 0, 0, 0, 0)},
		{"20240115T103000", date(2024, 1, 15, 10, 30, 0, 0)},
		{"20240115T1030", date(2024, 1, 15, 10, 30, 0, 0)},
		{"20240115T103000Z", date(2024, 1, 15, 10, 30, 0, 0)},
		// day first
		{"03/04/2024", date(2024, 4, 3, 0, 0, 0, 0)},
		{"03/04/2024 09:15", date(2024, 4, 3, 9, 15, 0, 0)},
		{"3-4-2024 9:15:20", date(2024, 4, 3, 9, 15, 20, 0)},
		{"03.04.2024", date(2024, 4, 3, 0, 0, 0, 0)},
		{"03/04/24", date(2024, 4, 3, 0, 0, 0, 0)},
		// month first fallback when day first is impossible
		{"12/25/2024 10:00", date(2024, 12, 25, 10, 0, 0, 0)},
		{"02/29/2024", date(2024, 2, 29, 0, 0, 0, 0)},
		// 12 hour clock
		{"03/04/2024 3:04 PM", date(2024, 4, 3, 15, 4, 0, 0)},
		// month names
		{"3 Apr 2024", date(2024, 4, 3, 0, 0, 0, 0)},
		{"April 3, 2024 10:30", date(2024, 4, 3, 10, 30, 0, 0)},
		{"3-Apr-2024", date(2024, 4, 3, 0, 0, 0, 0)},
		// surrounding whitespace
		{"  2024-01-01 05:00  ", date(2024, 1, 1, 5, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseTimestamp(tt.input)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %s, got %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestamp_Null(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a date",
		"2024-13-45",
		"31/31/2024",
		"25:00",
		"INC100001",
		"2024-01-01 25:61",
		"\x00\xff",
		"12345678901234567890",
		"20241345",
		"20240115T99",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Nil(t, ParseTimestamp(in))
		})
	}
}

func TestParseTimestamp_Total(t *testing.T) {
	// Parse-or-null must never panic whatever the input.
	inputs := []string{"/", "-", ".", "1/", "2024-", "T", "Z", "2024-01-01T", "0000-00-00", "99/99/99"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { ParseTimestamp(in) }, in)
	}
}
