package core

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var testCities = []string{"Балашиха", "Сергиев Посад", "Мытищи"}

func TestAggregate_EndToEnd(t *testing.T) {
	rows := [][]string{
		{"Балашиха Дом 1", "01.06.2024", "03.06.2024", "", "", "", "2000", ""},
	}

	ledgers, warnings := Aggregate(rows, testCities)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	ledger, ok := ledgers["Балашиха"]
	if !ok {
		t.Fatalf("no ledger for Балашиха, got %v", ledgers)
	}
	if len(ledger) != 3 {
		t.Fatalf("expected 3 dates, got %d", len(ledger))
	}

	expect := map[time.Time]DayTotal{
		day(2024, time.June, 1): {RoomNights: 1, Income: 1000},
		day(2024, time.June, 2): {RoomNights: 1, Income: 1000},
		day(2024, time.June, 3): {RoomNights: 0, Income: 0},
	}
	for date, want := range expect {
		got := ledger[date]
		if got.RoomNights != want.RoomNights || math.Abs(got.Income-want.Income) > 1e-9 {
			t.Errorf("%s: got %+v, want %+v", date.Format("02.01.2006"), got, want)
		}
	}
}

func TestAggregate_AdditiveMerge(t *testing.T) {
	// Two bookings overlapping on 02.06 contribute to the same city/date.
	rows := [][]string{
		{"Балашиха Дом 1", "01.06.2024", "03.06.2024", "", "", "", "2000", ""},
		{"Балашиха Дом 2", "02.06.2024", "04.06.2024", "", "", "", "1000", ""},
	}

	ledgers, _ := Aggregate(rows, testCities)
	got := ledgers["Балашиха"][day(2024, time.June, 2)]
	if got.RoomNights != 2 {
		t.Errorf("room nights on 02.06 = %d, want 2", got.RoomNights)
	}
	if math.Abs(got.Income-1500) > 1e-9 {
		t.Errorf("income on 02.06 = %v, want 1500", got.Income)
	}
}

func TestAggregate_RowPolicy(t *testing.T) {
	cases := []struct {
		name     string
		row      []string
		warnings int
		ledgers  int
	}{
		{"short row skipped silently", []string{"Балашиха", "01.06.2024", "03.06.2024", "2000"}, 0, 0},
		{"blank amount warns", []string{"Балашиха Дом 1", "01.06.2024", "03.06.2024", "", "", "", "", ""}, 1, 0},
		{"blank object warns", []string{"", "01.06.2024", "03.06.2024", "", "", "", "2000", ""}, 1, 0},
		{"unknown city skipped silently", []string{"Липецк Дом 1", "01.06.2024", "03.06.2024", "", "", "", "2000", ""}, 0, 0},
		{"bad date warns", []string{"Балашиха Дом 1", "junk", "03.06.2024", "", "", "", "2000", ""}, 1, 0},
		{"inverted stay warns", []string{"Балашиха Дом 1", "03.06.2024", "01.06.2024", "", "", "", "2000", ""}, 1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ledgers, warnings := Aggregate([][]string{tc.row}, testCities)
			if len(warnings) != tc.warnings {
				t.Errorf("warnings = %v, want %d", warnings, tc.warnings)
			}
			if len(ledgers) != tc.ledgers {
				t.Errorf("ledgers = %v, want %d", ledgers, tc.ledgers)
			}
		})
	}
}

func TestAggregate_WarningRowNumbers(t *testing.T) {
	rows := [][]string{
		{"Балашиха Дом 1", "01.06.2024", "03.06.2024", "", "", "", "2000", ""},
		{"Балашиха Дом 2", "bad", "03.06.2024", "", "", "", "2000", ""},
	}
	_, warnings := Aggregate(rows, testCities)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if warnings[0].Row != 2 {
		t.Errorf("warning row = %d, want 2 (1-based)", warnings[0].Row)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	rows := [][]string{
		{"Балашиха Дом 1", "01.06.2024", "05.06.2024", "", "", "", "4000", ""},
		{"Мытищи Дом 2", "02.06.2024", "04.06.2024", "", "", "", "1500", ""},
		{"Балашиха Дом 3", "03.06.2024", "06.06.2024", "", "", "", "999,99", ""},
		{"Сергиев Посад, Дом 4", "01.06.2024", "02.06.2024", "", "", "", "700", ""},
	}

	want, _ := Aggregate(rows, testCities)

	shuffled := make([][]string, len(rows))
	copy(shuffled, rows)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got, _ := Aggregate(shuffled, testCities)
		if len(got) != len(want) {
			t.Fatalf("city count changed under permutation: %d vs %d", len(got), len(want))
		}
		for city, ledger := range want {
			other := got[city]
			if len(other) != len(ledger) {
				t.Fatalf("%s: date count changed under permutation", city)
			}
			for date, total := range ledger {
				o := other[date]
				if o.RoomNights != total.RoomNights || math.Abs(o.Income-total.Income) > 1e-6 {
					t.Errorf("%s %s: %+v vs %+v", city, date.Format("02.01"), o, total)
				}
			}
		}
	}
}

func TestLedger_Dates(t *testing.T) {
	l := Ledger{
		day(2024, time.June, 3): {},
		day(2024, time.June, 1): {},
		day(2024, time.June, 2): {},
	}
	dates := l.Dates()
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			t.Fatalf("dates not ascending: %v", dates)
		}
	}
}
