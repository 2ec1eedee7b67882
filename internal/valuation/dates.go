package valuation

import (
	"strings"
	"time"

	"insightval/internal/apperr"
)

// DateFormat is the on-disk and wire format of every calendar date.
const DateFormat = time.DateOnly

// ParseDate validates a YYYY-MM-DD date and returns it normalized.
func ParseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.Validation("date is required")
	}
	t, err := time.Parse(DateFormat, raw)
	if err != nil {
		return "", apperr.Validation("malformed date %q, want YYYY-MM-DD", raw)
	}
	return t.Format(DateFormat), nil
}

// daysBetween counts calendar days from a to b. Inputs are already validated.
func daysBetween(a, b string) float64 {
	ta, errA := time.Parse(DateFormat, a)
	tb, errB := time.Parse(DateFormat, b)
	if errA != nil || errB != nil {
		return 0
	}
	return tb.Sub(ta).Hours() / 24
}
