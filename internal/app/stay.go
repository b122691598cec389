package app

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// NormalizeDate folds "2026/03/01" style separators into dashes.
func NormalizeDate(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "/", "-"))
}

// ParseYMD extracts the leading YYYY-MM-DD from a date string by
// literal digit matching, deliberately ignoring any time-of-day or
// timezone suffix: converting through a zoned clock shifts dates by a
// day near midnight.
func ParseYMD(s string) (time.Time, bool) {
	s = NormalizeDate(s)
	if len(s) < 10 {
		return time.Time{}, false
	}
	head := s[:10]
	for i := 0; i < 10; i++ {
		if i == 4 || i == 7 {
			if head[i] != '-' {
				return time.Time{}, false
			}
			continue
		}
		if head[i] < '0' || head[i] > '9' {
			return time.Time{}, false
		}
	}
	y, _ := strconv.Atoi(head[0:4])
	m, _ := strconv.Atoi(head[5:7])
	d, _ := strconv.Atoi(head[8:10])
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), true
}

// Nights is the rounded whole-day difference between the local-midnight
// anchors of the two dates, clamped to a minimum of one night.
// Unparsable input also yields one night.
func Nights(checkIn, checkOut string) int {
	in, ok := ParseYMD(checkIn)
	if !ok {
		return 1
	}
	out, ok := ParseYMD(checkOut)
	if !ok {
		return 1
	}
	n := int(math.Round(out.Sub(in).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

// TotalPrice is nightly price times nights, integer yuan. No further
// rounding rules exist.
func TotalPrice(nightly, nights int) int {
	return nightly * nights
}
