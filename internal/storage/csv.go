// Package storage writes cleaned tables to flat files.
package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/maltedev/fashion-etl/internal/dataset"
)

// WriteCSV writes the table to path as a header row followed by one line per
// row. The file is replaced atomically.
func WriteCSV(path string, t *dataset.Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(t.Columns()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := 0; i < t.Len(); i++ {
		if err := w.Write(FormatRow(t.Row(i))); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// FormatRow renders each cell as text. Missing values become empty strings.
func FormatRow(r dataset.Row) []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = FormatCell(v)
	}
	return out
}

func FormatCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int:
		return strconv.Itoa(c)
	default:
		return fmt.Sprint(c)
	}
}
