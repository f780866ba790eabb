// Package dataset holds the in-memory tabular structure the normalization
// pipeline works on. Cells are nil, string, float64 or int.
package dataset

import (
	"fmt"
	"strings"
)

type Row []interface{}

// Table is an ordered set of named columns over rows of cells.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	return New()
}

func (t *Table) addColumn(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	t.columns = append(t.columns, name)
	t.index[name] = len(t.columns) - 1
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], nil)
	}
	return len(t.columns) - 1
}

// Append adds a row. Missing trailing cells are filled with nil.
func (t *Table) Append(cells ...interface{}) error {
	if len(cells) > len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	row := make(Row, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Value returns the cell at row i in column. Unknown columns yield nil.
func (t *Table) Value(i int, column string) interface{} {
	c, ok := t.index[column]
	if !ok {
		return nil
	}
	return t.rows[i][c]
}

// Column returns a copy of every cell of the column in row order.
func (t *Table) Column(column string) []interface{} {
	c, ok := t.index[column]
	if !ok {
		return nil
	}
	out := make([]interface{}, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[c]
	}
	return out
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	out := make(Row, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Apply replaces every cell of column with fn(cell).
func (t *Table) Apply(column string, fn func(interface{}) interface{}) error {
	c, ok := t.index[column]
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	for _, r := range t.rows {
		r[c] = fn(r[c])
	}
	return nil
}

// Filter keeps the rows for which keep returns true, preserving order.
// Rows are reindexed contiguously.
func (t *Table) Filter(keep func(i int, row Row) bool) {
	kept := t.rows[:0]
	for i, r := range t.rows {
		if keep(i, r) {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = nil
	}
	t.rows = kept
}

// Clone returns a deep copy of the table structure. Cell values are copied
// by value.
func (t *Table) Clone() *Table {
	c := New(t.columns...)
	c.rows = make([]Row, len(t.rows))
	for i, r := range t.rows {
		c.rows[i] = make(Row, len(r))
		copy(c.rows[i], r)
	}
	return c
}

// Records returns the rows as column-name keyed maps.
func (t *Table) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, len(t.rows))
	for i, r := range t.rows {
		m := make(map[string]interface{}, len(t.columns))
		for c, name := range t.columns {
			m[name] = r[c]
		}
		out[i] = m
	}
	return out
}

// RowKey renders a row into a string that is equal for two rows exactly when
// every cell has the same type and value.
func RowKey(r Row) string {
	var b strings.Builder
	for i, v := range r {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch c := v.(type) {
		case nil:
			b.WriteString("<nil>")
		case string:
			// Quoting keeps the separator out of string cells.
			fmt.Fprintf(&b, "string:%q", c)
		default:
			fmt.Fprintf(&b, "%T:%v", c, c)
		}
	}
	return b.String()
}
