package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maltedev/fashion-etl/internal/dataset"
)

// Store appends cleaned tables to a relational database.
type Store interface {
	AppendTable(ctx context.Context, table string, t *dataset.Table) (int64, error)
	Close()
}

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// ParseURL splits a database URL into a driver name and the DSN the driver
// understands. A "+driver" suffix on the scheme, as in
// "postgresql+psycopg2://", is ignored.
func ParseURL(raw string) (driver, dsn string, err error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "", "", fmt.Errorf("failed to parse database URL: missing scheme")
	}
	base, _, _ := strings.Cut(strings.ToLower(scheme), "+")

	switch base {
	case "postgres", "postgresql":
		return driverPostgres, "postgres://" + rest, nil
	case "sqlite", "sqlite3":
		path := rest
		if path == "" {
			return "", "", fmt.Errorf("failed to parse database URL: sqlite path is empty")
		}
		return driverSQLite, path, nil
	default:
		return "", "", fmt.Errorf("failed to parse database URL: unsupported scheme %q", scheme)
	}
}

// Open connects to the database named by url.
func Open(ctx context.Context, url string, logger *slog.Logger) (Store, error) {
	driver, dsn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	if driver == driverSQLite {
		store, err := OpenSQLite(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	db, err := NewPostgres(ctx, Config{DSN: dsn, MaxConns: 4}, logger)
	if err != nil {
		return nil, err
	}
	return db, nil
}

type columnType int

const (
	columnText columnType = iota
	columnFloat
	columnInt
)

// inferColumnTypes picks a SQL type per column from the first non-null cell.
func inferColumnTypes(t *dataset.Table) []columnType {
	columns := t.Columns()
	types := make([]columnType, len(columns))
	for c, name := range columns {
		for _, v := range t.Column(name) {
			if v == nil {
				continue
			}
			switch v.(type) {
			case float64:
				types[c] = columnFloat
			case int:
				types[c] = columnInt
			}
			break
		}
	}
	return types
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(table string, columns []string, types []columnType, typeNames map[columnType]string) string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col) + " " + typeNames[types[i]]
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}
