package table

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/lookout/schema"
)

// Column is a typed, nullable column. Exactly one of the value slices is used,
// selected by the column type. Null slots hold the zero value.
type Column struct {
	typ   schema.FieldType
	n     int
	nulls *roaring.Bitmap

	f32   []float32
	i64   []int64
	strs  []string
	bools []bool
}

// NewColumn returns an empty column of type t.
func NewColumn(t schema.FieldType) *Column {
	return &Column{typ: t, nulls: roaring.New()}
}

// NewNullColumn returns a column of n nulls.
func NewNullColumn(t schema.FieldType, n int) *Column {
	c := NewColumn(t)
	c.AppendNulls(n)
	return c
}

// NewFloat32Column wraps vals. A nil nulls bitmap means no nulls.
func NewFloat32Column(vals []float32, nulls *roaring.Bitmap) *Column {
	return &Column{typ: schema.FieldTypeFloat32, n: len(vals), f32: vals, nulls: orEmpty(nulls)}
}

// NewInt64Column wraps vals. A nil nulls bitmap means no nulls.
func NewInt64Column(vals []int64, nulls *roaring.Bitmap) *Column {
	return &Column{typ: schema.FieldTypeInt64, n: len(vals), i64: vals, nulls: orEmpty(nulls)}
}

// NewStringColumn wraps vals. A nil nulls bitmap means no nulls.
func NewStringColumn(vals []string, nulls *roaring.Bitmap) *Column {
	return &Column{typ: schema.FieldTypeString, n: len(vals), strs: vals, nulls: orEmpty(nulls)}
}

// NewBoolColumn wraps vals. A nil nulls bitmap means no nulls.
func NewBoolColumn(vals []bool, nulls *roaring.Bitmap) *Column {
	return &Column{typ: schema.FieldTypeBool, n: len(vals), bools: vals, nulls: orEmpty(nulls)}
}

func orEmpty(bm *roaring.Bitmap) *roaring.Bitmap {
	if bm == nil {
		return roaring.New()
	}
	return bm
}

// Type returns the storage type.
func (c *Column) Type() schema.FieldType { return c.typ }

// Len returns the number of rows.
func (c *Column) Len() int { return c.n }

// NullCount returns the number of null rows.
func (c *Column) NullCount() int { return int(c.nulls.GetCardinality()) }

// Nulls returns the bitmap of null row ids. Callers must not modify it.
func (c *Column) Nulls() *roaring.Bitmap { return c.nulls }

// IsNull reports whether row i is null.
func (c *Column) IsNull(i int) bool { return c.nulls.Contains(uint32(i)) }

// Float32s returns the backing values of a Float32 column.
func (c *Column) Float32s() []float32 { return c.f32 }

// Int64s returns the backing values of an Int64 column.
func (c *Column) Int64s() []int64 { return c.i64 }

// Strings returns the backing values of a String column.
func (c *Column) Strings() []string { return c.strs }

// Bools returns the backing values of a Bool column.
func (c *Column) Bools() []bool { return c.bools }

// Value returns row i as a Value. Float32 cells widen to float64 exactly.
func (c *Column) Value(i int) Value {
	if c.IsNull(i) {
		return Null()
	}
	switch c.typ {
	case schema.FieldTypeFloat32:
		return Float(float64(c.f32[i]))
	case schema.FieldTypeInt64:
		return Int(c.i64[i])
	case schema.FieldTypeString:
		return String(c.strs[i])
	case schema.FieldTypeBool:
		return Bool(c.bools[i])
	default:
		return Value{}
	}
}

// Numeric returns row i as a float64 for Float32 and Int64 columns.
func (c *Column) Numeric(i int) (float64, bool) {
	if c.IsNull(i) {
		return 0, false
	}
	switch c.typ {
	case schema.FieldTypeFloat32:
		return float64(c.f32[i]), true
	case schema.FieldTypeInt64:
		return float64(c.i64[i]), true
	default:
		return 0, false
	}
}

// IsNumeric reports whether the column holds numbers.
func (c *Column) IsNumeric() bool {
	return c.typ == schema.FieldTypeFloat32 || c.typ == schema.FieldTypeInt64
}

// Append adds v, which must be null or already coerced to the column type.
func (c *Column) Append(v Value) error {
	if v.Kind == KindNull {
		c.AppendNulls(1)
		return nil
	}

	switch {
	case c.typ == schema.FieldTypeFloat32 && v.Kind == KindFloat:
		c.f32 = append(c.f32, float32(v.F64))
	case c.typ == schema.FieldTypeInt64 && v.Kind == KindInt:
		c.i64 = append(c.i64, v.I64)
	case c.typ == schema.FieldTypeString && v.Kind == KindString:
		c.strs = append(c.strs, v.s)
	case c.typ == schema.FieldTypeBool && v.Kind == KindBool:
		c.bools = append(c.bools, v.B)
	default:
		return fmt.Errorf("table: cannot append %s to %s column", v.Kind, c.typ)
	}
	c.n++
	return nil
}

// AppendNulls adds n null rows.
func (c *Column) AppendNulls(n int) {
	if n <= 0 {
		return
	}
	c.nulls.AddRange(uint64(c.n), uint64(c.n+n))
	switch c.typ {
	case schema.FieldTypeFloat32:
		c.f32 = append(c.f32, make([]float32, n)...)
	case schema.FieldTypeInt64:
		c.i64 = append(c.i64, make([]int64, n)...)
	case schema.FieldTypeString:
		c.strs = append(c.strs, make([]string, n)...)
	case schema.FieldTypeBool:
		c.bools = append(c.bools, make([]bool, n)...)
	}
	c.n += n
}

// concat returns a new column holding c followed by o.
func (c *Column) concat(o *Column) (*Column, error) {
	if c.typ != o.typ {
		return nil, fmt.Errorf("table: cannot concat %s and %s columns", c.typ, o.typ)
	}
	if uint64(c.n)+uint64(o.n) > math.MaxUint32 {
		return nil, fmt.Errorf("table: column too long")
	}

	nulls := c.nulls.Clone()
	it := o.nulls.Iterator()
	for it.HasNext() {
		nulls.Add(it.Next() + uint32(c.n))
	}

	out := &Column{typ: c.typ, n: c.n + o.n, nulls: nulls}
	switch c.typ {
	case schema.FieldTypeFloat32:
		out.f32 = append(append(make([]float32, 0, out.n), c.f32...), o.f32...)
	case schema.FieldTypeInt64:
		out.i64 = append(append(make([]int64, 0, out.n), c.i64...), o.i64...)
	case schema.FieldTypeString:
		out.strs = append(append(make([]string, 0, out.n), c.strs...), o.strs...)
	case schema.FieldTypeBool:
		out.bools = append(append(make([]bool, 0, out.n), c.bools...), o.bools...)
	}
	return out, nil
}
