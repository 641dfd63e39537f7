// Package sheets defines the port to the remote spreadsheet service.
package sheets

import "context"

// CellUpdate addresses one cell within a sheet (A1 notation, e.g. "E12")
// and the value to write there.
type CellUpdate struct {
	Range string
	Value any
}

// Client is the outbound port for destination spreadsheet documents,
// addressed by their full URL. All operations may fail transiently; the
// caller owns retries.
type Client interface {
	// ListSheets returns the worksheet titles of the document.
	ListSheets(ctx context.Context, spreadsheetURL string) ([]string, error)

	// CreateOrReplaceSheet prepares a fresh worksheet with the given name,
	// deleting any existing worksheet with the same name first. The new
	// worksheet is cloned from the document's last worksheet, which serves
	// as the dated template carrying the date column.
	CreateOrReplaceSheet(ctx context.Context, spreadsheetURL, name string) error

	// ReadColumn returns the cells of one column (1-based index) in row
	// order. Blank cells are returned as empty strings so positions stay
	// aligned with row numbers.
	ReadColumn(ctx context.Context, spreadsheetURL, sheet string, column int) ([]string, error)

	// BatchWrite applies all updates to the named worksheet in one call.
	BatchWrite(ctx context.Context, spreadsheetURL, sheet string, updates []CellUpdate) error
}

// ClientProvider hands out a ready Client. Implementations may cache the
// underlying service; Invalidate discards any cached instance so the next
// Get builds a fresh one.
type ClientProvider interface {
	Get(ctx context.Context) (Client, error)
	Invalidate()
}
