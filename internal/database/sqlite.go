package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maltedev/fashion-etl/internal/dataset"
	_ "modernc.org/sqlite"
)

var sqliteTypes = map[columnType]string{
	columnText:  "TEXT",
	columnFloat: "REAL",
	columnInt:   "INTEGER",
}

// SQLite is an embedded store for local runs.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	return &SQLite{db: db, logger: logger.With("component", "sqlite")}, nil
}

func (s *SQLite) Close() {
	s.db.Close()
}

func (s *SQLite) AppendTable(ctx context.Context, table string, t *dataset.Table) (int64, error) {
	columns := t.Columns()
	if len(columns) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ddl := createTableSQL(table, columns, inferColumnTypes(t), sqliteTypes)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < t.Len(); i++ {
		if _, err := stmt.ExecContext(ctx, t.Row(i)...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	n := int64(t.Len())
	s.logger.Info("rows appended", "table", table, "rows", n)
	return n, nil
}
