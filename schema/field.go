package schema

import (
	"fmt"
	"strings"
)

// FieldType is the declared storage type of a column.
type FieldType uint8

const (
	FieldTypeInvalid FieldType = iota
	FieldTypeString
	FieldTypeFloat32
	FieldTypeInt64
	FieldTypeBool
)

// String returns the string representation of the FieldType.
func (t FieldType) String() string {
	switch t {
	case FieldTypeString:
		return "String"
	case FieldTypeFloat32:
		return "Float32"
	case FieldTypeInt64:
		return "Int64"
	case FieldTypeBool:
		return "Bool"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is a known storage type.
func (t FieldType) Valid() bool {
	return t >= FieldTypeString && t <= FieldTypeBool
}

// ParseFieldType is the inverse of FieldType.String, case-insensitive.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "string":
		return FieldTypeString, nil
	case "float32":
		return FieldTypeFloat32, nil
	case "int64":
		return FieldTypeInt64, nil
	case "bool":
		return FieldTypeBool, nil
	default:
		return FieldTypeInvalid, fmt.Errorf("schema: unknown field type %q", s)
	}
}

// Field is a named, typed column.
type Field struct {
	Name string
	Type FieldType
}

func (f Field) String() string { return f.Name + ":" + f.Type.String() }
