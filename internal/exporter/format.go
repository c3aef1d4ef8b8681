package exporter

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the on-disk form of timestamps. Fractional seconds are
// appended only when non-zero.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatFloat renders f in its shortest round-trip form. Integral values keep
// a trailing ".0" so a float column never reads back as an integer column.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FormatInt formats an int64 value for CSV output
func FormatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// FormatTimestamp renders t with TimestampLayout, or "" when t is nil.
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	if t.Nanosecond() == 0 {
		return t.Format(TimestampLayout)
	}
	return t.Format(TimestampLayout + ".999999999")
}

// FormatFlag writes a nullable boolean as 1, 0 or empty.
func FormatFlag(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "1"
	}
	return "0"
}

// FormatOptionalFloat returns "" for nil.
func FormatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return FormatFloat(*f)
}

// FormatOptionalInt returns "" for nil.
func FormatOptionalInt(i *int64) string {
	if i == nil {
		return ""
	}
	return FormatInt(*i)
}

// FormatOptionalString returns "" for nil.
func FormatOptionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
