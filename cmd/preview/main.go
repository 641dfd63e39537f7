// Command preview aggregates a booking export locally and prints the
// per-city ledgers without touching any spreadsheet. Useful for checking
// a file before uploading it.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"xlsimport/internal/core"
	"xlsimport/internal/services"
	"xlsimport/internal/xlsparse"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <export.xls|export.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	rows, err := xlsparse.Parse(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", path, err)
		os.Exit(1)
	}

	ledgers, warnings := core.Aggregate(rows, services.DefaultCities)

	fmt.Printf("%s: %d rows, %d cities with data, %d warnings\n\n",
		path, len(rows), len(ledgers), len(warnings))

	cities := make([]string, 0, len(ledgers))
	for city := range ledgers {
		cities = append(cities, city)
	}
	sort.Strings(cities)

	for _, city := range cities {
		ledger := ledgers[city]
		fmt.Printf("%s (%d дат)\n", city, len(ledger))
		for _, date := range ledger.Dates() {
			total := ledger[date]
			fmt.Printf("  %s  КН=%d  Доход=%.2f\n",
				date.Format("02.01.2006"), total.RoomNights, total.Income)
		}
		fmt.Println()
	}

	if len(warnings) > 0 {
		fmt.Println("Предупреждения:")
		for _, w := range warnings {
			fmt.Printf("  %s\n", w)
		}
	}
}
