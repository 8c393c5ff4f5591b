package model

import "math"

// Table is a column-oriented table aligned 1:1 with a price series: every
// column has exactly Rows entries. Column insertion order is preserved so
// serialized output is deterministic.
type Table struct {
	rows    int
	names   []string
	columns map[string][]float64
}

// NewTable creates an empty table for the given row count.
func NewTable(rows int) *Table {
	return &Table{
		rows:    rows,
		columns: make(map[string][]float64, 8),
	}
}

// Rows returns the row count every column must match.
func (t *Table) Rows() int { return t.rows }

// SetColumn stores a column. Panics if the length does not match the row
// count. Misaligned columns are a programming error, not a runtime state.
func (t *Table) SetColumn(name string, values []float64) {
	if len(values) != t.rows {
		panic("model: column " + name + " length does not match table rows")
	}
	if _, exists := t.columns[name]; !exists {
		t.names = append(t.names, name)
	}
	t.columns[name] = values
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) []float64 {
	return t.columns[name]
}

// ColumnNames returns the column names in insertion order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Value returns the value at (name, i), or NaN if the column is absent.
func (t *Table) Value(name string, i int) float64 {
	col, ok := t.columns[name]
	if !ok {
		return math.NaN()
	}
	return col[i]
}

// MissingColumn returns a column of the table's length filled with NaN.
func MissingColumn(rows int) []float64 {
	col := make([]float64, rows)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
