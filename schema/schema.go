package schema

import (
	"fmt"
	"strings"
)

// Schema is an ordered set of fields with unique names.
//
// The zero value is an empty schema. Schemas are values: Append returns a new
// schema and never modifies the receiver.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a schema from fields. Names must be unique and non-empty and types
// must be valid.
func New(fields ...Field) (Schema, error) {
	var s Schema
	return s.Append(fields...)
}

// MustNew is like New but panics on error.
func MustNew(fields ...Field) Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Append returns a copy of s with fields added at the end.
func (s Schema) Append(fields ...Field) (Schema, error) {
	out := Schema{
		fields: make([]Field, 0, len(s.fields)+len(fields)),
		index:  make(map[string]int, len(s.fields)+len(fields)),
	}
	for _, f := range s.fields {
		out.index[f.Name] = len(out.fields)
		out.fields = append(out.fields, f)
	}
	for _, f := range fields {
		if f.Name == "" {
			return Schema{}, fmt.Errorf("schema: empty field name")
		}
		if !f.Type.Valid() {
			return Schema{}, fmt.Errorf("schema: field %q has invalid type %s", f.Name, f.Type)
		}
		if _, dup := out.index[f.Name]; dup {
			return Schema{}, fmt.Errorf("schema: duplicate field %q", f.Name)
		}
		out.index[f.Name] = len(out.fields)
		out.fields = append(out.fields, f)
	}
	return out, nil
}

// Len returns the number of fields.
func (s Schema) Len() int { return len(s.fields) }

// Fields returns a copy of the fields in order.
func (s Schema) Fields() []Field { return append([]Field(nil), s.fields...) }

// FieldAt returns the i-th field.
func (s Schema) FieldAt(i int) Field { return s.fields[i] }

// Names returns the field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of name, or -1.
func (s Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Field returns the field called name.
func (s Schema) Field(name string) (Field, bool) {
	i := s.Index(name)
	if i < 0 {
		return Field{}, false
	}
	return s.fields[i], true
}

// Has reports whether the schema contains a field called name.
func (s Schema) Has(name string) bool { return s.Index(name) >= 0 }

// Equal reports whether both schemas have the same fields in the same order.
func (s Schema) Equal(other Schema) bool {
	if len(s.fields) != len(other.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i] != other.fields[i] {
			return false
		}
	}
	return true
}

// String returns a compact description such as "schema<a:String, b:Float32>".
func (s Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = f.String()
	}
	return "schema<" + strings.Join(parts, ", ") + ">"
}
