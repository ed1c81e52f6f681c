package dataset

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// Table is an in-memory columnar table: ordered, named, typed columns
// sharing a single row count. It wraps an Arrow record batch and is
// read-only; filtering and styling borrow it for the duration of one
// evaluation call.
type Table struct {
	rec arrow.RecordBatch
}

// FromRecord wraps a record batch in a Table. The table retains the
// record; call Release when done.
func FromRecord(rec arrow.RecordBatch) *Table {
	rec.Retain()
	return &Table{rec: rec}
}

// Release releases the underlying record batch.
func (t *Table) Release() {
	t.rec.Release()
}

// NumRows returns the row count shared by all columns.
func (t *Table) NumRows() int {
	return int(t.rec.NumRows())
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return int(t.rec.NumCols())
}

// Schema returns the table schema.
func (t *Table) Schema() *arrow.Schema {
	return t.rec.Schema()
}

// ColumnNames returns the column names in schema order.
func (t *Table) ColumnNames() []string {
	fields := t.rec.Schema().Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Column looks up a column by name. The second return is false when no
// column with that name exists.
func (t *Table) Column(name string) (arrow.Array, bool) {
	indices := t.rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, false
	}
	return t.rec.Column(indices[0]), true
}

// ColumnAt returns the column at schema position i.
func (t *Table) ColumnAt(i int) arrow.Array {
	return t.rec.Column(i)
}

// CellString formats a single cell for display. Nulls render as the
// empty string.
func (t *Table) CellString(row, col int) string {
	arr := t.rec.Column(col)
	if arr.IsNull(row) {
		return ""
	}
	return arr.ValueStr(row)
}
