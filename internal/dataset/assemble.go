package dataset

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/maltedev/fashion-etl/internal/models"
)

var ErrInvalidRecord = errors.New("invalid record")

// Record is one ordered set of named values.
type Record []models.Field

// Build creates one column per distinct field name, in first-seen order, and
// one row per record. Names a record lacks are nil in its row.
func Build(records []Record) (*Table, error) {
	t := Empty()

	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("%w: record %d is nil", ErrInvalidRecord, i)
		}
		seen := make(map[string]struct{}, len(rec))
		for _, f := range rec {
			if f.Name == "" {
				return nil, fmt.Errorf("%w: record %d has an unnamed field", ErrInvalidRecord, i)
			}
			if _, dup := seen[f.Name]; dup {
				return nil, fmt.Errorf("%w: record %d repeats field %q", ErrInvalidRecord, i, f.Name)
			}
			seen[f.Name] = struct{}{}
			t.addColumn(f.Name)
		}
	}

	t.rows = make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(t.columns))
		for _, f := range rec {
			row[t.index[f.Name]] = f.Value
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// ToTable converts the crawl result into a table. It never fails: unusable
// input is logged and yields an empty table.
func ToTable(logger *slog.Logger, products []models.RawProduct) *Table {
	records := make([]Record, len(products))
	for i, p := range products {
		records[i] = p.Fields()
	}

	t, err := Build(records)
	if err != nil {
		logger.Error("failed to convert products to table", "error", err, "records", len(records))
		return Empty()
	}

	logger.Debug("assembled table", "rows", t.Len(), "columns", len(t.columns))
	return t
}
