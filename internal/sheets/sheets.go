// Package sheets uploads cleaned tables to a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/maltedev/fashion-etl/internal/dataset"
	"github.com/maltedev/fashion-etl/internal/storage"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

var ErrCredentialsNotFound = errors.New("service account credentials not found")

const valueInputRaw = "RAW"

// ValuesUpdater writes a block of values starting at a range.
type ValuesUpdater interface {
	Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (int64, error)
}

type Config struct {
	SpreadsheetID   string
	Range           string
	CredentialsFile string
}

type Client struct {
	updater       ValuesUpdater
	spreadsheetID string
	rng           string
	logger        *slog.Logger
}

// New authenticates with the service account credential file.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, cfg.CredentialsFile)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	svc, err := gsheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewWithUpdater(&apiUpdater{svc: svc}, cfg.SpreadsheetID, cfg.Range, logger), nil
}

func NewWithUpdater(updater ValuesUpdater, spreadsheetID, rng string, logger *slog.Logger) *Client {
	return &Client{
		updater:       updater,
		spreadsheetID: spreadsheetID,
		rng:           rng,
		logger:        logger.With("component", "sheets"),
	}
}

// Upload replaces the range with the table's header and rows. Failures are
// logged and returned to the caller.
func (c *Client) Upload(ctx context.Context, t *dataset.Table) error {
	cells, err := c.updater.Update(ctx, c.spreadsheetID, c.rng, Values(t))
	if err != nil {
		c.logger.Error("failed to upload to spreadsheet", "spreadsheet_id", c.spreadsheetID, "range", c.rng, "error", err)
		return fmt.Errorf("failed to upload to spreadsheet: %w", err)
	}
	c.logger.Info("spreadsheet updated", "spreadsheet_id", c.spreadsheetID, "cells", cells)
	return nil
}

// Values converts the table into a header row followed by stringified rows.
func Values(t *dataset.Table) [][]interface{} {
	columns := t.Columns()
	out := make([][]interface{}, 0, t.Len()+1)

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	out = append(out, header)

	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		line := make([]interface{}, len(row))
		for j, v := range row {
			line[j] = storage.FormatCell(v)
		}
		out = append(out, line)
	}
	return out
}

type apiUpdater struct {
	svc *gsheets.Service
}

func (u *apiUpdater) Update(ctx context.Context, spreadsheetID, rng string, values [][]interface{}) (int64, error) {
	resp, err := u.svc.Spreadsheets.Values.
		Update(spreadsheetID, rng, &gsheets.ValueRange{Values: values}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return 0, err
	}
	return resp.UpdatedCells, nil
}
