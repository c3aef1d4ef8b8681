package dataprocessing

import (
	"strings"
	"time"
	"unicode"
)

var (
	isoTimes = []string{"", "T15:04", "T15:04:05", " 15:04", " 15:04:05"}
	isoZones = []string{"", "Z07:00", "Z0700"}

	wallTimes = []string{"", " 15:04", " 15:04:05", " 3:04 PM", " 3:04:05 PM", " 3:04PM"}

	yearFirstLayouts = withTimes(
		[]string{"2006-1-2", "2006/1/2", "2006.1.2"}, isoTimes, isoZones)

	compactLayouts = withTimes(
		[]string{"20060102"}, []string{"", "T1504", "T150405"}, isoZones)

	dayFirstLayouts = withTimes(
		[]string{"2/1/2006", "2-1-2006", "2.1.2006", "2/1/06", "2-1-06", "2.1.06"}, wallTimes, nil)

	monthFirstLayouts = withTimes(
		[]string{"1/2/2006", "1-2-2006", "1.2.2006", "1/2/06", "1-2-06", "1.2.06"}, wallTimes, nil)

	namedLayouts = withTimes([]string{
		"2 Jan 2006", "2 January 2006", "2-Jan-2006", "2-Jan-06",
		"Jan 2 2006", "January 2 2006", "Jan 2, 2006", "January 2, 2006",
		"Mon, 2 Jan 2006", "Monday, January 2, 2006",
	}, wallTimes, nil)
)

func withTimes(dates, times, zones []string) []string {
	var out []string
	for _, d := range dates {
		for _, t := range times {
			if t == "" || len(zones) == 0 {
				out = append(out, d+t)
				continue
			}
			for _, z := range zones {
				out = append(out, d+t+z)
			}
		}
	}
	return out
}

// ParseTimestamp parses s as a calendar timestamp, or returns nil. Slash,
// dash and dot dates are read day first, falling back to month first when
// the day-first reading is not a valid date. Four digit leading years, ISO
// 8601 with T and zone designators, compact dates such as 20240115T1030,
// optional seconds and fractional seconds, 12 hour clocks and month names
// are accepted. Zoned values are converted to UTC; every result is a UTC
// wall-clock instant.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsFunc(s, unicode.IsDigit) {
		return nil
	}

	for _, family := range layoutFamilies(s) {
		for _, layout := range family {
			if t, err := time.Parse(layout, s); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}

func layoutFamilies(s string) [][]string {
	if unicode.IsLetter(rune(s[0])) {
		return [][]string{namedLayouts}
	}
	if len(s) > 4 && isDigits(s[:4]) && strings.ContainsRune("-/.", rune(s[4])) {
		return [][]string{yearFirstLayouts}
	}
	if len(s) >= 8 && isDigits(s[:8]) && (len(s) == 8 || s[8] == 'T') {
		return [][]string{compactLayouts}
	}
	return [][]string{dayFirstLayouts, monthFirstLayouts, namedLayouts}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
