// Package xlsparse converts uploaded booking exports into a raw row/cell
// grid. The legacy channel manager exports "XML Spreadsheet 2003" files
// under an .xls extension; genuine .xlsx archives show up occasionally and
// are handled too.
package xlsparse

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

var (
	ErrNoWorksheet = errors.New("worksheet not found")
	ErrNoTable     = errors.New("table not found")
)

// xlsxMagic is the zip local-file header; real .xlsx files are zip archives.
var xlsxMagic = []byte{'P', 'K', 0x03, 0x04}

// Parse reads the file at path and returns the first worksheet as a grid
// of cell strings. Cells are emitted in document order.
func Parse(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if bytes.HasPrefix(raw, xlsxMagic) {
		return parseXLSX(path)
	}
	return parseSpreadsheetML(raw)
}

// SpreadsheetML 2003 document structure, namespace
// urn:schemas-microsoft-com:office:spreadsheet.
type mlWorkbook struct {
	Worksheets []mlWorksheet `xml:"Worksheet"`
}

type mlWorksheet struct {
	Table *mlTable `xml:"Table"`
}

type mlTable struct {
	Rows []mlRow `xml:"Row"`
}

type mlRow struct {
	Cells []mlCell `xml:"Cell"`
}

type mlCell struct {
	Data string `xml:"Data"`
}

func parseSpreadsheetML(raw []byte) ([][]string, error) {
	var wb mlWorkbook
	if err := xml.Unmarshal(raw, &wb); err != nil {
		return nil, fmt.Errorf("parse spreadsheet xml: %w", err)
	}
	if len(wb.Worksheets) == 0 {
		return nil, ErrNoWorksheet
	}
	table := wb.Worksheets[0].Table
	if table == nil {
		return nil, ErrNoTable
	}

	grid := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, cell.Data)
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

func parseXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}
