package utils

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const layoutCallDate = "Jan 02 - 15:04"

// FormatDate renders a call timestamp as "Jan 02 - 15:04" in the given location.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(layoutCallDate)
}

// FormatDuration renders seconds as "1 hour 2 minutes 5 seconds", dropping
// zero units. Fractions of a second are truncated.
func FormatDuration(seconds float64) string {
	if seconds < 1 || math.IsNaN(seconds) {
		return "0 seconds"
	}
	total := int64(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60

	parts := make([]string, 0, 3)
	if h > 0 {
		parts = append(parts, plural(h, "hour"))
	}
	if m > 0 {
		parts = append(parts, plural(m, "minute"))
	}
	if s > 0 {
		parts = append(parts, plural(s, "second"))
	}
	return strings.Join(parts, " ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
