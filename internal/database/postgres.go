package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/maltedev/fashion-etl/internal/dataset"
)

var postgresTypes = map[columnType]string{
	columnText:  "TEXT",
	columnFloat: "DOUBLE PRECISION",
	columnInt:   "BIGINT",
}

type Config struct {
	DSN      string
	MaxConns int32
}

type DB struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool, logger: logger.With("component", "postgres")}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// WithTx runs fn inside a transaction, committing when fn succeeds.
func (db *DB) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AppendTable creates the target table when missing and bulk-copies every row.
func (db *DB) AppendTable(ctx context.Context, table string, t *dataset.Table) (int64, error) {
	columns := t.Columns()
	if len(columns) == 0 {
		return 0, nil
	}
	ddl := createTableSQL(table, columns, inferColumnTypes(t), postgresTypes)

	rows := make([][]interface{}, t.Len())
	for i := range rows {
		rows[i] = t.Row(i)
	}

	var copied int64
	err := db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy rows into %s: %w", table, err)
		}
		copied = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Info("rows appended", "table", table, "rows", copied)
	return copied, nil
}
