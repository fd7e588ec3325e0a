package dative

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the form every datetime is written in: UTC with
// millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Layouts accepted by ParseTime, tried in order. Values without an offset
// are read as UTC. Fractional seconds are accepted after the seconds field
// of any layout.
var parseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05-07",
	"2006-01-02T15:04",
	"2006-01-02T15:04Z07:00",
	"2006-01-02",
}

// ParseTime reads an ISO-8601 datetime or date as found in Dative exports.
// A space is accepted in place of the "T" separator.
func ParseTime(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if len(v) > 10 && v[10] == ' ' {
		v = v[:10] + "T" + v[11:]
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO-8601 datetime", s)
}

// FormatTime writes t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
