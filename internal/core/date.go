package core

import (
	"strings"
	"time"
)

// Date formats accepted in booking exports, tried in order. The legacy
// export mixes dotted Russian dates with ISO dates in the same column.
var dateLayouts = []string{
	"02.01.2006",
	"02.01.06",
	"2006-01-02",
}

// ParseDate parses a booking date in one of the supported formats.
// Unparseable or empty input reports ok=false; it is a normal outcome for
// header and footer rows, not an error.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return time.Time{}, false
}

// DateOf truncates t to a calendar date (midnight UTC) so dates compare
// and hash consistently as ledger keys.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
