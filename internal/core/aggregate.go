package core

import (
	"fmt"
	"sort"
	"time"
)

// Column positions in the legacy export. Only these four cells matter;
// everything else in a row is ignored.
const (
	colObject   = 0
	colCheckIn  = 1
	colCheckOut = 2
	colAmount   = 6

	// Rows with fewer cells are structural noise (headers, footers).
	minRowCells = 8
)

// DayTotal accumulates occupancy and income for one city and date.
type DayTotal struct {
	RoomNights int
	Income     float64
}

// Ledger maps calendar dates to accumulated totals for a single city.
type Ledger map[time.Time]DayTotal

// Warning is a row-level defect worth reporting to the uploader. Row is
// the 1-based position in the original export.
type Warning struct {
	Row     int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("Строка %d: %s", w.Row, w.Message)
}

// Aggregate folds the raw row grid into per-city ledgers. cities is the
// configured city list in configuration order; it drives city resolution.
//
// The function is pure: same rows and cities always produce the same
// ledgers and warnings, and row order does not affect the sums.
func Aggregate(rows [][]string, cities []string) (map[string]Ledger, []Warning) {
	ledgers := make(map[string]Ledger)
	var warnings []Warning

	for i, row := range rows {
		rowNum := i + 1
		if len(row) < minRowCells {
			continue
		}

		objectName := row[colObject]
		checkIn := row[colCheckIn]
		checkOut := row[colCheckOut]
		amount := row[colAmount]

		if objectName == "" || checkIn == "" || checkOut == "" || amount == "" {
			warnings = append(warnings, Warning{Row: rowNum, Message: "Пропущена - не все поля заполнены"})
			continue
		}

		city, ok := ResolveCity(objectName, cities)
		if !ok {
			// Object outside the configured scope, not a defect.
			continue
		}

		if _, ok := ParseDate(checkIn); !ok {
			warnings = append(warnings, Warning{Row: rowNum, Message: fmt.Sprintf("Неверный формат даты (заезд: %s, выезд: %s)", checkIn, checkOut)})
			continue
		}
		if _, ok := ParseDate(checkOut); !ok {
			warnings = append(warnings, Warning{Row: rowNum, Message: fmt.Sprintf("Неверный формат даты (заезд: %s, выезд: %s)", checkIn, checkOut)})
			continue
		}

		nights := Allocate(checkIn, checkOut, amount)
		if len(nights) == 0 {
			warnings = append(warnings, Warning{Row: rowNum, Message: "Ошибка расчёта КН/Дохода"})
			continue
		}

		ledger, ok := ledgers[city]
		if !ok {
			ledger = make(Ledger)
			ledgers[city] = ledger
		}
		for _, n := range nights {
			total := ledger[n.Date]
			total.RoomNights += n.RoomNights
			total.Income += n.Income
			ledger[n.Date] = total
		}
	}

	return ledgers, warnings
}

// Dates returns the ledger's dates in ascending order.
func (l Ledger) Dates() []time.Time {
	out := make([]time.Time, 0, len(l))
	for d := range l {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
