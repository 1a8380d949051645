// Package table holds the in-memory tabular model shared by the loader,
// the transforms and the store.
package table

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Row is one record, positionally aligned with Table.Columns.
type Row []Value

// Table is an ordered set of rows under a header.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given header.
func New(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: columns}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of column, or -1 when the table has no such
// column.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the table has column.
func (t *Table) Has(column string) bool { return t.Index(column) >= 0 }

// Append adds a row. It panics when the row width does not match the header,
// which is always a programming error.
func (t *Table) Append(row Row) {
	if len(row) != len(t.Columns) {
		panic(fmt.Sprintf("table %s: row has %d values, header has %d", t.Name, len(row), len(t.Columns)))
	}
	t.Rows = append(t.Rows, row)
}

// WithRows returns a table with the same name and header and the given rows.
func (t *Table) WithRows(rows []Row) *Table {
	return &Table{Name: t.Name, Columns: append([]string(nil), t.Columns...), Rows: rows}
}

// Clone copies the header and every row so the copy can be edited in place.
func (t *Table) Clone() *Table {
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = append(Row(nil), r...)
	}
	return t.WithRows(rows)
}

// Head renders the header and up to n rows as aligned text, for logs.
func (t *Table) Head(n int) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows[:min(n, len(t.Rows))] {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = Format(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()

	return strings.TrimRight(b.String(), "\n")
}
