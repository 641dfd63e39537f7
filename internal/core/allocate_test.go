package core

import (
	"math"
	"testing"
	"time"
)

func TestAllocate_TwoNights(t *testing.T) {
	nights := Allocate("01.06.2024", "03.06.2024", "2000")
	if len(nights) != 3 {
		t.Fatalf("expected 3 entries (2 nights + checkout), got %d", len(nights))
	}

	first := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		n := nights[i]
		if !n.Date.Equal(first.AddDate(0, 0, i)) {
			t.Errorf("night %d: date %v", i, n.Date)
		}
		if n.RoomNights != 1 {
			t.Errorf("night %d: room nights %d, want 1", i, n.RoomNights)
		}
		if n.Income != 1000 {
			t.Errorf("night %d: income %v, want 1000", i, n.Income)
		}
	}

	checkout := nights[2]
	if !checkout.Date.Equal(time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("checkout date %v", checkout.Date)
	}
	if checkout.RoomNights != 0 || checkout.Income != 0 {
		t.Errorf("checkout entry = %+v, want zeroes", checkout)
	}
}

func TestAllocate_IncomeSumsToTotal(t *testing.T) {
	cases := []struct {
		checkIn, checkOut, amount string
		nights                    int
		total                     float64
	}{
		{"01.06.2024", "04.06.2024", "1000", 3, 1000},
		{"10.01.2024", "17.01.2024", "9999,99", 7, 9999.99},
		{"28.02.2024", "01.03.2024", "3 500", 2, 3500}, // leap year, spaced thousands
	}

	for _, tc := range cases {
		nights := Allocate(tc.checkIn, tc.checkOut, tc.amount)
		if len(nights) != tc.nights+1 {
			t.Errorf("%s..%s: got %d entries, want %d", tc.checkIn, tc.checkOut, len(nights), tc.nights+1)
			continue
		}
		var sum float64
		for _, n := range nights {
			sum += n.Income
		}
		if math.Abs(sum-tc.total) > 1e-6 {
			t.Errorf("%s..%s: income sum %v, want %v", tc.checkIn, tc.checkOut, sum, tc.total)
		}
	}
}

func TestAllocate_Rejections(t *testing.T) {
	cases := []struct {
		name                      string
		checkIn, checkOut, amount string
	}{
		{"equal dates", "01.06.2024", "01.06.2024", "1000"},
		{"checkout before checkin", "03.06.2024", "01.06.2024", "1000"},
		{"bad checkin", "garbage", "03.06.2024", "1000"},
		{"bad checkout", "01.06.2024", "garbage", "1000"},
		{"empty amount", "01.06.2024", "03.06.2024", ""},
		{"bad amount", "01.06.2024", "03.06.2024", "two thousand"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if nights := Allocate(tc.checkIn, tc.checkOut, tc.amount); len(nights) != 0 {
				t.Errorf("expected empty allocation, got %d entries", len(nights))
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"2000", 2000, true},
		{"1999,50", 1999.5, true},
		{"1 250 000,75", 1250000.75, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.input)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseAmount(%q) = (%v, %v), want (%v, %v)", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}
