package core

import (
	"strconv"
	"strings"
	"time"
)

// Night is one calendar day of a stay: occupancy and the revenue share
// attributed to that day.
type Night struct {
	Date       time.Time
	RoomNights int
	Income     float64
}

// Allocate splits a booking's total charge evenly across its nights.
// For a stay of n nights it returns n entries with RoomNights=1 and
// Income=amount/n, followed by a single checkout-day entry with zeroes so
// the departure date still shows up in the ledger.
//
// Any defect in the inputs (unparseable date, check-in on or after
// check-out, blank or malformed amount) yields an empty slice; the caller
// decides whether that is worth a warning. Income division is plain
// float64 with no rounding, so sums across many nights can drift by
// fractions of a kopeck.
func Allocate(checkIn, checkOut, amount string) []Night {
	in, ok := ParseDate(checkIn)
	if !ok {
		return nil
	}
	out, ok := ParseDate(checkOut)
	if !ok {
		return nil
	}
	if !in.Before(out) {
		return nil
	}

	total, ok := parseAmount(amount)
	if !ok {
		return nil
	}

	nights := int(out.Sub(in).Hours() / 24)
	if nights <= 0 {
		return nil
	}
	perNight := total / float64(nights)

	result := make([]Night, 0, nights+1)
	for d, i := in, 0; i < nights; d, i = d.AddDate(0, 0, 1), i+1 {
		result = append(result, Night{Date: d, RoomNights: 1, Income: perNight})
	}
	result = append(result, Night{Date: out, RoomNights: 0, Income: 0})
	return result
}

// parseAmount normalizes a charge cell: decimal comma becomes a dot and
// internal spaces (thousands separators) are dropped.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
