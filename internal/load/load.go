// Package load hands a cleaned table to the configured sinks.
package load

import (
	"context"
	"log/slog"

	"github.com/maltedev/fashion-etl/internal/config"
	"github.com/maltedev/fashion-etl/internal/database"
	"github.com/maltedev/fashion-etl/internal/dataset"
	"github.com/maltedev/fashion-etl/internal/sheets"
	"github.com/maltedev/fashion-etl/internal/storage"
)

type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFailed   Outcome = "failed"
	OutcomeDisabled Outcome = "disabled"
)

const (
	SinkDatabase = "database"
	SinkCSV      = "csv"
	SinkSheets   = "sheets"
)

// Uploader sends a table to a spreadsheet.
type Uploader interface {
	Upload(ctx context.Context, t *dataset.Table) error
}

type Options struct {
	Database config.DatabaseConfig
	Output   config.OutputConfig
	Sheets   config.SheetsConfig
}

type Loader struct {
	opts   Options
	logger *slog.Logger

	openStore   func(ctx context.Context, url string, logger *slog.Logger) (database.Store, error)
	newUploader func(ctx context.Context, cfg sheets.Config, logger *slog.Logger) (Uploader, error)
}

func New(opts Options, logger *slog.Logger) *Loader {
	return &Loader{
		opts:      opts,
		logger:    logger.With("component", "loader"),
		openStore: database.Open,
		newUploader: func(ctx context.Context, cfg sheets.Config, logger *slog.Logger) (Uploader, error) {
			client, err := sheets.New(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	}
}

// Load writes t to the database, the CSV file and the spreadsheet, in that
// order. Database and file failures are logged and recorded in the outcome
// map only; a spreadsheet failure is also returned.
func (l *Loader) Load(ctx context.Context, t *dataset.Table) (map[string]Outcome, error) {
	outcomes := map[string]Outcome{
		SinkDatabase: l.storeDatabase(ctx, t),
		SinkCSV:      l.storeCSV(t),
	}

	outcome, err := l.storeSheets(ctx, t)
	outcomes[SinkSheets] = outcome
	return outcomes, err
}

func (l *Loader) storeDatabase(ctx context.Context, t *dataset.Table) Outcome {
	if !l.opts.Database.Enabled {
		return OutcomeDisabled
	}

	store, err := l.openStore(ctx, l.opts.Database.URL, l.logger)
	if err != nil {
		l.logger.Error("failed to connect to database", "error", err)
		return OutcomeFailed
	}
	defer store.Close()

	n, err := store.AppendTable(ctx, l.opts.Database.Table, t)
	if err != nil {
		l.logger.Error("failed to store data in database", "table", l.opts.Database.Table, "error", err)
		return OutcomeFailed
	}
	l.logger.Info("data stored in database", "table", l.opts.Database.Table, "rows", n)
	return OutcomeOK
}

func (l *Loader) storeCSV(t *dataset.Table) Outcome {
	if !l.opts.Output.Enabled {
		return OutcomeDisabled
	}

	if err := storage.WriteCSV(l.opts.Output.CSVPath, t); err != nil {
		l.logger.Error("failed to write CSV", "path", l.opts.Output.CSVPath, "error", err)
		return OutcomeFailed
	}
	l.logger.Info("data saved to CSV", "path", l.opts.Output.CSVPath, "rows", t.Len())
	return OutcomeOK
}

func (l *Loader) storeSheets(ctx context.Context, t *dataset.Table) (Outcome, error) {
	if !l.opts.Sheets.Enabled {
		return OutcomeDisabled, nil
	}

	uploader, err := l.newUploader(ctx, sheets.Config{
		SpreadsheetID:   l.opts.Sheets.SpreadsheetID,
		Range:           l.opts.Sheets.Range,
		CredentialsFile: l.opts.Sheets.CredentialsFile,
	}, l.logger)
	if err != nil {
		l.logger.Error("failed to authenticate with spreadsheet service", "error", err)
		return OutcomeFailed, err
	}

	if err := uploader.Upload(ctx, t); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeOK, nil
}
