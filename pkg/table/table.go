// Package table holds the in-memory spreadsheet model shared by the readers,
// writers and renderers: typed cells, rectangular tables and workbooks.
package table

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrColumnNotFound  = errors.New("column not found")
	ErrRaggedRow       = errors.New("row width does not match column count")
)

// Table is a rectangular grid of cells with unique column names.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// New creates an empty table. Column names must be unique.
func New(columns ...string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := index[c]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		index[c] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, index: index}, nil
}

// MustNew is New for static column lists.
func MustNew(columns ...string) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns a copy of the column names.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) NumColumns() int { return len(t.columns) }

func (t *Table) Len() int { return len(t.rows) }

// ColumnIndex returns the position of a column or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// MissingColumns returns the names from required that the table lacks.
func (t *Table) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// AppendRow adds a row. Its width must match the column count.
func (t *Table) AppendRow(cells ...Cell) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("%w: got %d cells for %d columns", ErrRaggedRow, len(cells), len(t.columns))
	}
	row := make([]Cell, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []Cell {
	out := make([]Cell, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// Rows returns copies of every row.
func (t *Table) Rows() [][]Cell {
	out := make([][]Cell, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Cell returns the value at row i of the named column; Missing if the
// column does not exist.
func (t *Table) Cell(i int, column string) Cell {
	j := t.ColumnIndex(column)
	if j < 0 {
		return Missing()
	}
	return t.rows[i][j]
}

// Set overwrites a single value.
func (t *Table) Set(i int, column string, c Cell) error {
	j := t.ColumnIndex(column)
	if j < 0 {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	t.rows[i][j] = c
	return nil
}

// Column returns every value of the named column.
func (t *Table) Column(name string) ([]Cell, error) {
	j := t.ColumnIndex(name)
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	out := make([]Cell, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[j]
	}
	return out, nil
}

// WithColumn returns a copy of t with the column set to values. An existing
// column keeps its position; a new one is appended. values must have one
// entry per row.
func (t *Table) WithColumn(name string, values []Cell) (*Table, error) {
	if len(values) != len(t.rows) {
		return nil, fmt.Errorf("%w: column %q has %d values for %d rows", ErrRaggedRow, name, len(values), len(t.rows))
	}
	if j := t.ColumnIndex(name); j >= 0 {
		out := t.Clone()
		for i := range out.rows {
			out.rows[i][j] = values[i]
		}
		return out, nil
	}
	out, err := New(append(t.Columns(), name)...)
	if err != nil {
		return nil, err
	}
	out.rows = make([][]Cell, len(t.rows))
	for i, row := range t.rows {
		r := make([]Cell, 0, len(row)+1)
		r = append(r, row...)
		out.rows[i] = append(r, values[i])
	}
	return out, nil
}

// Select projects the table onto the given columns, in that order.
func (t *Table) Select(columns ...string) (*Table, error) {
	idx := make([]int, len(columns))
	for k, c := range columns {
		j := t.ColumnIndex(c)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, c)
		}
		idx[k] = j
	}
	out, err := New(columns...)
	if err != nil {
		return nil, err
	}
	out.rows = make([][]Cell, len(t.rows))
	for i, row := range t.rows {
		r := make([]Cell, len(idx))
		for k, j := range idx {
			r[k] = row[j]
		}
		out.rows[i] = r
	}
	return out, nil
}

// Filter returns a table with the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	out := t.emptyCopy()
	for i, row := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Pick returns a table holding the rows at the given positions, in order.
func (t *Table) Pick(positions []int) *Table {
	out := t.emptyCopy()
	out.rows = make([][]Cell, len(positions))
	for k, i := range positions {
		out.rows[k] = t.rows[i]
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := t.emptyCopy()
	out.rows = t.Rows()
	return out
}

func (t *Table) emptyCopy() *Table {
	out := &Table{columns: t.Columns(), index: make(map[string]int, len(t.index))}
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}

// Records returns each row as a column-name keyed map.
func (t *Table) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, len(t.rows))
	for i, row := range t.rows {
		rec := make(map[string]interface{}, len(t.columns))
		for j, c := range t.columns {
			rec[c] = row[j].Value()
		}
		out[i] = rec
	}
	return out
}
