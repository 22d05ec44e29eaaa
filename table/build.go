package table

import (
	"sort"

	"github.com/hupe1980/lookout/schema"
)

// Coercion records a value that could not be stored in its column and was
// replaced by null.
type Coercion struct {
	Field string
	From  Kind
	To    schema.FieldType
	Err   error
}

// BuildRow builds a single-row table conforming to s.
//
// Every field of s gets a cell: missing keys become null, values are coerced
// to the column type, and values that fail coercion become null and are listed
// in coerced. Keys of r that are not in s are returned in ignored.
func BuildRow(s schema.Schema, r Row) (t *Table, coerced []Coercion, ignored []string) {
	t = New(s)
	for i := 0; i < s.Len(); i++ {
		f := s.FieldAt(i)
		v, ok := r[f.Name]
		if !ok {
			v = Null()
		}
		cv, err := Coerce(v, f.Type)
		if err != nil {
			coerced = append(coerced, Coercion{Field: f.Name, From: v.Kind, To: f.Type, Err: err})
			cv = Null()
		}
		// cv matches the column type by construction.
		_ = t.cols[i].Append(cv)
	}
	t.rows = 1

	for k := range r {
		if !s.Has(k) {
			ignored = append(ignored, k)
		}
	}
	sort.Strings(ignored)
	return t, coerced, ignored
}
