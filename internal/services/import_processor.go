// Package services runs the background jobs behind the HTTP API.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"xlsimport/internal/amqp"
	"xlsimport/internal/core"
	"xlsimport/internal/retry"
	"xlsimport/internal/settings"
	"xlsimport/internal/sheets"
	"xlsimport/internal/task"
	"xlsimport/internal/xlsparse"
)

// GeneralCity labels run-level warnings that are not attributable to a
// single destination city.
const GeneralCity = "Общие"

// DefaultCities is the fixed publication list. Every import walks it in
// this order; cities absent from the upload still advance the progress
// counter.
var DefaultCities = []string{
	"Балашиха", "Железнодорожный", "Жуковский", "Ивантеевка", "Казань",
	"Королев", "Люберцы", "Мытищи", "Ногинск", "Пушкино",
	"Раменское", "Сергиев Посад", "Фрязино", "Щелково", "Электросталь",
}

// TaskEventPublisher emits lifecycle events for external consumers.
// A nil publisher disables events.
type TaskEventPublisher interface {
	PublishTaskEvent(ctx context.Context, msg *amqp.TaskEventMessage) error
}

// ImportProcessorConfig holds configuration for the import processor.
type ImportProcessorConfig struct {
	// Cities is the publication list, walked in order.
	Cities []string

	// CityPause is the delay between cities, a throttle against the
	// remote service's per-minute quota. No pause after the last city.
	CityPause time.Duration

	// Retry governs every remote spreadsheet operation.
	Retry retry.Policy

	// DateColumn is the 1-based column holding dates in destination
	// sheets (default: 2, column B).
	DateColumn int

	// RoomNightsColumn and IncomeColumn are the A1 column letters the
	// ledger is written to (defaults: E and H).
	RoomNightsColumn string
	IncomeColumn     string

	// SheetNameLayout formats today's date into the worksheet name
	// (default: "020106", i.e. DDMMYY).
	SheetNameLayout string
}

// DefaultImportProcessorConfig returns sensible defaults.
func DefaultImportProcessorConfig() ImportProcessorConfig {
	return ImportProcessorConfig{
		Cities:           DefaultCities,
		CityPause:        1 * time.Second,
		Retry:            retry.DefaultPolicy(),
		DateColumn:       2,
		RoomNightsColumn: "E",
		IncomeColumn:     "H",
		SheetNameLayout:  "020106",
	}
}

// ImportProcessor runs one uploaded export end to end: parse, aggregate,
// publish per-city ledgers to the configured spreadsheets, recording
// progress and per-city outcomes in the task store.
type ImportProcessor struct {
	settings settings.Store
	tasks    *task.Store
	clients  sheets.ClientProvider
	events   TaskEventPublisher
	config   ImportProcessorConfig

	// parse is swappable in tests.
	parse func(path string) ([][]string, error)
}

// NewImportProcessor creates a new import processor. events may be nil.
func NewImportProcessor(
	store settings.Store,
	tasks *task.Store,
	clients sheets.ClientProvider,
	events TaskEventPublisher,
	config ImportProcessorConfig,
) *ImportProcessor {
	return &ImportProcessor{
		settings: store,
		tasks:    tasks,
		clients:  clients,
		events:   events,
		config:   config,
		parse:    xlsparse.Parse,
	}
}

// CityCount returns the length of the publication list, the progress
// total for new tasks.
func (p *ImportProcessor) CityCount() int {
	return len(p.config.Cities)
}

// Run processes one uploaded file for the given task. The temp file is
// removed when the run ends, whatever the outcome. Run never returns an
// error: every failure is recorded in the task store instead.
func (p *ImportProcessor) Run(ctx context.Context, taskID, filePath string) {
	defer func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			slog.WarnContext(ctx, "Failed to remove temp upload",
				"task_id", taskID, "path", filePath, "error", err)
		}
	}()

	slog.InfoContext(ctx, "Import job started", "task_id", taskID, "file", filePath)
	p.publishEvent(ctx, taskID, task.StateProcessing, "")

	cfg, err := p.settings.Load(ctx)
	if err != nil {
		p.fail(ctx, taskID, "load settings", err)
		return
	}

	rows, err := p.parse(filePath)
	if err != nil {
		p.fail(ctx, taskID, "parse upload", err)
		return
	}

	// Rows resolve against the configured settings keys, not the
	// publication list: a qualified key like "Королев (мкр. Юбилейный)"
	// must claim its rows, and rows for cities nobody configured are
	// skipped without a warning.
	ledgers, warnings := core.Aggregate(rows, cfg.Cities())
	if len(warnings) > 0 {
		p.tasks.Update(taskID, func(st *task.Status) {
			for _, w := range warnings {
				st.Errors = append(st.Errors, task.CityError{City: GeneralCity, Message: w.String()})
			}
		})
	}

	sheetName := time.Now().Format(p.config.SheetNameLayout)

	for i, city := range p.config.Cities {
		if err := ctx.Err(); err != nil {
			p.fail(ctx, taskID, "canceled", err)
			return
		}

		p.tasks.Update(taskID, func(st *task.Status) {
			st.Progress.CurrentCity = city
		})

		p.processCity(ctx, taskID, city, cfg, ledgers[city], sheetName)

		p.tasks.Update(taskID, func(st *task.Status) {
			st.Progress.Current = i + 1
		})
		p.publishEvent(ctx, taskID, task.StateProcessing, city)

		if p.config.CityPause > 0 && i < len(p.config.Cities)-1 {
			select {
			case <-ctx.Done():
				p.fail(ctx, taskID, "canceled", ctx.Err())
				return
			case <-time.After(p.config.CityPause):
			}
		}
	}

	p.tasks.Update(taskID, func(st *task.Status) {
		st.State = task.StateCompleted
		st.Progress.CurrentCity = ""
	})
	p.publishEvent(ctx, taskID, task.StateCompleted, "")
	slog.InfoContext(ctx, "Import job completed", "task_id", taskID)
}

// processCity handles one city. Failures are recorded against the city;
// they never abort the run.
func (p *ImportProcessor) processCity(ctx context.Context, taskID, city string, cfg *settings.Settings, ledger core.Ledger, sheetName string) {
	url, ok := cfg.URL(city)
	if !ok || url == "" {
		p.tasks.Update(taskID, func(st *task.Status) {
			st.Errors = append(st.Errors, task.CityError{City: city, Message: "❌ Ссылка на таблицу не настроена"})
		})
		return
	}

	if len(ledger) == 0 {
		p.tasks.Update(taskID, func(st *task.Status) {
			st.Success = append(st.Success, fmt.Sprintf("ℹ️ %s - нет данных для обработки", city))
		})
		return
	}

	if err := p.publishCity(ctx, city, url, ledger, sheetName); err != nil {
		slog.WarnContext(ctx, "City publication failed",
			"task_id", taskID, "city", city, "error", err)
		p.tasks.Update(taskID, func(st *task.Status) {
			st.Errors = append(st.Errors, task.CityError{City: city, Message: "❌ " + err.Error()})
		})
		return
	}

	p.tasks.Update(taskID, func(st *task.Status) {
		st.Success = append(st.Success, fmt.Sprintf("✅ %s - обработано %d дат", city, len(ledger)))
	})
}

// publishCity writes one city's ledger into a freshly prepared dated
// worksheet of its destination spreadsheet.
func (p *ImportProcessor) publishCity(ctx context.Context, city, url string, ledger core.Ledger, sheetName string) error {
	var client sheets.Client
	err := p.config.Retry.Do(ctx, "acquire sheets client", func(ctx context.Context) error {
		var err error
		client, err = p.clients.Get(ctx)
		return err
	})
	if err != nil {
		return err
	}

	err = p.config.Retry.Do(ctx, "create sheet", func(ctx context.Context) error {
		return client.CreateOrReplaceSheet(ctx, url, sheetName)
	})
	if err != nil {
		return err
	}

	var column []string
	err = p.config.Retry.Do(ctx, "read date column", func(ctx context.Context) error {
		var err error
		column, err = client.ReadColumn(ctx, url, sheetName, p.config.DateColumn)
		return err
	})
	if err != nil {
		return err
	}

	// Map each date in the template's date column to its row number.
	// Duplicate dates keep the last row, matching sheet scan order.
	dateToRow := make(map[time.Time]int, len(column))
	for i, cell := range column {
		if cell == "" {
			continue
		}
		if d, ok := core.ParseDate(cell); ok {
			dateToRow[d] = i + 1
		}
	}

	updates := make([]sheets.CellUpdate, 0, 2*len(ledger))
	for _, date := range ledger.Dates() {
		row, ok := dateToRow[date]
		if !ok {
			slog.DebugContext(ctx, "Ledger date absent from sheet",
				"city", city, "date", date.Format("02.01.2006"), "sheet", sheetName)
			continue
		}
		total := ledger[date]
		updates = append(updates,
			sheets.CellUpdate{Range: fmt.Sprintf("%s%d", p.config.RoomNightsColumn, row), Value: total.RoomNights},
			sheets.CellUpdate{Range: fmt.Sprintf("%s%d", p.config.IncomeColumn, row), Value: total.Income},
		)
	}
	if len(updates) == 0 {
		return nil
	}

	return p.config.Retry.Do(ctx, "write ledger", func(ctx context.Context) error {
		return client.BatchWrite(ctx, url, sheetName, updates)
	})
}

// fail moves the task to the failed state with a diagnostic detail.
func (p *ImportProcessor) fail(ctx context.Context, taskID, stage string, err error) {
	slog.ErrorContext(ctx, "Import job failed",
		"task_id", taskID, "stage", stage, "error", err)
	p.tasks.Update(taskID, func(st *task.Status) {
		st.State = task.StateFailed
		st.Error = err.Error()
		st.ErrorDetails = fmt.Sprintf("%s: %v", stage, err)
	})
	p.publishEvent(ctx, taskID, task.StateFailed, "")
}

// publishEvent emits a lifecycle event. Publish failures are logged and
// swallowed; eventing must never fail a job.
func (p *ImportProcessor) publishEvent(ctx context.Context, taskID string, state task.State, city string) {
	if p.events == nil {
		return
	}
	msg := amqp.NewTaskEventMessage(taskID, string(state), city)
	if err := p.events.PublishTaskEvent(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Failed to publish task event",
			"task_id", taskID, "state", state, "error", err)
	}
}
