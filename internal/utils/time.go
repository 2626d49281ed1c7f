package utils

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseTimestamp accepts RFC 3339 and returns the instant in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 timestamp: %w", err)
	}
	return t.UTC(), nil
}

// ParseRangeStart parses the lower bound of a date range. A bare date means
// midnight UTC of that day.
func ParseRangeStart(s string) (time.Time, error) {
	return parseRangeBound(s, false)
}

// ParseRangeEnd parses the upper bound of a date range. A bare date is
// inclusive, so it becomes midnight of the following day.
func ParseRangeEnd(s string) (time.Time, error) {
	return parseRangeBound(s, true)
}

func parseRangeBound(s string, end bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(dateLayout, s); err == nil {
		if end {
			d = d.AddDate(0, 0, 1)
		}
		return d.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC 3339: %q", s)
	}
	return t.UTC(), nil
}
