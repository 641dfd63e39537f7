// Package google implements the spreadsheet port on top of the Google
// Sheets API v4 using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	ports "xlsimport/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc *gsheet.Service
}

var _ ports.Client = (*Client)(nil)

// spreadsheetURLRe extracts the document id from a full Google Sheets URL.
var spreadsheetURLRe = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

var ErrBadSpreadsheetURL = errors.New("invalid Google Sheets URL")

// NewFromEnv creates a Sheets client from service account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExtractSpreadsheetID pulls the document id out of a destination URL.
func ExtractSpreadsheetID(url string) (string, error) {
	m := spreadsheetURLRe.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrBadSpreadsheetURL, url)
	}
	return m[1], nil
}

func (c *Client) ListSheets(ctx context.Context, spreadsheetURL string) ([]string, error) {
	id, err := ExtractSpreadsheetID(spreadsheetURL)
	if err != nil {
		return nil, err
	}
	doc, err := c.svc.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", id, err)
	}
	titles := make([]string, 0, len(doc.Sheets))
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

// CreateOrReplaceSheet deletes any worksheet already carrying name and
// duplicates the last remaining worksheet (the dated template) under it.
// Re-running an import on the same day therefore replaces that day's
// sheet instead of stacking copies.
func (c *Client) CreateOrReplaceSheet(ctx context.Context, spreadsheetURL, name string) error {
	id, err := ExtractSpreadsheetID(spreadsheetURL)
	if err != nil {
		return err
	}
	doc, err := c.svc.Spreadsheets.Get(id).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", id, err)
	}
	if len(doc.Sheets) == 0 {
		return fmt.Errorf("spreadsheet %s has no sheets", id)
	}

	requests, err := replaceSheetRequests(doc.Sheets, name)
	if err != nil {
		return fmt.Errorf("spreadsheet %s: %w", id, err)
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(id, &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("create sheet %s in %s: %w", name, id, err)
	}

	slog.InfoContext(ctx, "Prepared destination sheet",
		"spreadsheet", id,
		"sheet", name,
		"replaced", len(requests) > 1)
	return nil
}

// replaceSheetRequests builds the batch that deletes any worksheet
// already carrying name and duplicates the template to the end. The
// requests run in order within one batch, so the insert index must
// count the sheets that remain after the deletes.
func replaceSheetRequests(sheetsList []*gsheet.Sheet, name string) ([]*gsheet.Request, error) {
	var requests []*gsheet.Request
	var template *gsheet.SheetProperties
	deleted := 0
	for _, sh := range sheetsList {
		if sh.Properties == nil {
			continue
		}
		if sh.Properties.Title == name {
			requests = append(requests, &gsheet.Request{
				DeleteSheet: &gsheet.DeleteSheetRequest{SheetId: sh.Properties.SheetId},
			})
			deleted++
			continue
		}
		// Last worksheet that survives the delete is the template.
		template = sh.Properties
	}
	if template == nil {
		return nil, errors.New("no template sheet to duplicate")
	}

	requests = append(requests, &gsheet.Request{
		DuplicateSheet: &gsheet.DuplicateSheetRequest{
			SourceSheetId:    template.SheetId,
			InsertSheetIndex: int64(len(sheetsList) - deleted),
			NewSheetName:     name,
		},
	})
	return requests, nil
}

func (c *Client) ReadColumn(ctx context.Context, spreadsheetURL, sheet string, column int) ([]string, error) {
	id, err := ExtractSpreadsheetID(spreadsheetURL)
	if err != nil {
		return nil, err
	}
	letter := columnLetter(column)
	rng := fmt.Sprintf("%s!%s:%s", sheet, letter, letter)
	resp, err := c.svc.Spreadsheets.Values.Get(id, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	// Preserve row alignment: a row with no cell in this column still
	// occupies a slot, as an empty string.
	out := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out, nil
}

func (c *Client) BatchWrite(ctx context.Context, spreadsheetURL, sheet string, updates []ports.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	id, err := ExtractSpreadsheetID(spreadsheetURL)
	if err != nil {
		return err
	}

	data := make([]*gsheet.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &gsheet.ValueRange{
			Range:  fmt.Sprintf("%s!%s", sheet, u.Range),
			Values: [][]any{{u.Value}},
		})
	}

	_, err = c.svc.Spreadsheets.Values.BatchUpdate(id, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch write %d cells to %s!%s: %w", len(updates), id, sheet, err)
	}

	slog.InfoContext(ctx, "Wrote ledger cells",
		"spreadsheet", id,
		"sheet", sheet,
		"cells", len(updates))
	return nil
}

// columnLetter converts a 1-based column index to its A1 letter ("B" for 2).
func columnLetter(n int) string {
	if n < 1 {
		n = 1
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}
