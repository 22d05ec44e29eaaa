package table

import (
	"fmt"

	"github.com/hupe1980/lookout/schema"
)

// Table is a schema plus one column per field, all of equal length.
type Table struct {
	schema schema.Schema
	cols   []*Column
	rows   int
}

// New returns an empty table with schema s.
func New(s schema.Schema) *Table {
	cols := make([]*Column, s.Len())
	for i := range cols {
		cols[i] = NewColumn(s.FieldAt(i).Type)
	}
	return &Table{schema: s, cols: cols}
}

// FromColumns assembles a table. Column types and lengths must match.
func FromColumns(s schema.Schema, cols []*Column) (*Table, error) {
	if len(cols) != s.Len() {
		return nil, fmt.Errorf("table: %d columns for %d fields", len(cols), s.Len())
	}
	rows := 0
	for i, c := range cols {
		f := s.FieldAt(i)
		if c.Type() != f.Type {
			return nil, fmt.Errorf("table: column %q is %s, schema says %s", f.Name, c.Type(), f.Type)
		}
		if i == 0 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, fmt.Errorf("table: column %q has %d rows, want %d", f.Name, c.Len(), rows)
		}
	}
	return &Table{schema: s, cols: cols, rows: rows}, nil
}

// Schema returns the table schema.
func (t *Table) Schema() schema.Schema { return t.schema }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Column returns the i-th column.
func (t *Table) Column(i int) *Column { return t.cols[i] }

// ColumnByName returns the column called name.
func (t *Table) ColumnByName(name string) (*Column, bool) {
	i := t.schema.Index(name)
	if i < 0 {
		return nil, false
	}
	return t.cols[i], true
}

// Row returns row i with an entry for every column.
func (t *Table) Row(i int) Row {
	r := make(Row, len(t.cols))
	for j, c := range t.cols {
		r[t.schema.FieldAt(j).Name] = c.Value(i)
	}
	return r
}

// AppendColumns adds fields to the schema and fills every existing row with
// null in each new column.
func (t *Table) AppendColumns(fields ...schema.Field) error {
	s, err := t.schema.Append(fields...)
	if err != nil {
		return err
	}
	for _, f := range fields {
		t.cols = append(t.cols, NewNullColumn(f.Type, t.rows))
	}
	t.schema = s
	return nil
}

// Concat returns a new table with the rows of a followed by the rows of b.
// Both tables must have equal schemas.
func Concat(a, b *Table) (*Table, error) {
	if !a.schema.Equal(b.schema) {
		return nil, fmt.Errorf("table: schema mismatch: %s vs %s", a.schema, b.schema)
	}
	cols := make([]*Column, len(a.cols))
	for i := range a.cols {
		c, err := a.cols[i].concat(b.cols[i])
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return &Table{schema: a.schema, cols: cols, rows: a.rows + b.rows}, nil
}

// Merge concatenates tables whose schemas may differ. The result schema is the
// union of all columns in first-seen order; rows from a table lacking a column
// are null there. A column name with two different types is an error.
func Merge(tables ...*Table) (*Table, error) {
	var union schema.Schema
	for _, t := range tables {
		final, _ := reconcileUnion(union, t.schema)
		if final == nil {
			return nil, fmt.Errorf("table: conflicting column types in %s", t.schema)
		}
		union = *final
	}

	out := New(union)
	for _, t := range tables {
		widened := &Table{schema: t.schema, cols: append([]*Column(nil), t.cols...), rows: t.rows}
		_, added := reconcileUnion(widened.schema, union)
		if err := widened.AppendColumns(added...); err != nil {
			return nil, err
		}
		aligned, err := widened.project(union)
		if err != nil {
			return nil, err
		}
		if out, err = Concat(out, aligned); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// reconcileUnion returns the fields of want missing from have. final is nil on
// a type conflict.
func reconcileUnion(have, want schema.Schema) (final *schema.Schema, added []schema.Field) {
	if len(schema.Conflicts(have, want)) > 0 {
		return nil, nil
	}
	s, added := schema.Reconcile(have, want)
	return &s, added
}

// project reorders columns to match s, which must have the same field set.
func (t *Table) project(s schema.Schema) (*Table, error) {
	cols := make([]*Column, s.Len())
	for i := 0; i < s.Len(); i++ {
		c, ok := t.ColumnByName(s.FieldAt(i).Name)
		if !ok {
			return nil, fmt.Errorf("table: missing column %q", s.FieldAt(i).Name)
		}
		cols[i] = c
	}
	return FromColumns(s, cols)
}
