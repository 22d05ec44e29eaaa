package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/lookout/schema"
)

// ErrCoercion is returned when a value cannot be represented in a column type.
var ErrCoercion = errors.New("table: coercion failed")

// Coerce converts v to the storage kind of t.
//
// Float32 columns take Float values, Int64 columns Int values, Bool columns
// Bool values and String columns String values. Null passes through. Numbers
// convert between each other (floats truncate toward zero into Int64), bools
// convert to 1 and 0, and strings are parsed. Anything that does not fit is an
// error wrapping ErrCoercion.
func Coerce(v Value, t schema.FieldType) (Value, error) {
	if v.Kind == KindNull {
		return v, nil
	}
	if v.Kind == KindInvalid {
		return Value{}, fmt.Errorf("%w: invalid value for %s", ErrCoercion, t)
	}

	switch t {
	case schema.FieldTypeFloat32:
		return toFloat32(v)
	case schema.FieldTypeInt64:
		return toInt64(v)
	case schema.FieldTypeBool:
		return toBool(v)
	case schema.FieldTypeString:
		return String(v.String()), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown column type %s", ErrCoercion, t)
	}
}

func toFloat32(v Value) (Value, error) {
	var f float64
	switch v.Kind {
	case KindFloat:
		f = v.F64
	case KindInt:
		f = float64(v.I64)
	case KindBool:
		if v.B {
			f = 1
		}
	case KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrCoercion, v.s)
		}
		f = parsed
	}
	if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
		return Value{}, fmt.Errorf("%w: %g overflows float32", ErrCoercion, f)
	}
	return Float(f), nil
}

func toInt64(v Value) (Value, error) {
	switch v.Kind {
	case KindInt:
		return v, nil
	case KindFloat:
		f := math.Trunc(v.F64)
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %g does not fit int64", ErrCoercion, v.F64)
		}
		return Int(int64(f)), nil
	case KindBool:
		if v.B {
			return Int(1), nil
		}
		return Int(0), nil
	default:
		i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an integer", ErrCoercion, v.s)
		}
		return Int(i), nil
	}
}

func toBool(v Value) (Value, error) {
	switch v.Kind {
	case KindBool:
		return v, nil
	case KindInt:
		return Bool(v.I64 != 0), nil
	case KindFloat:
		return Bool(v.F64 != 0), nil
	default:
		b, err := strconv.ParseBool(strings.TrimSpace(v.s))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a bool", ErrCoercion, v.s)
		}
		return Bool(b), nil
	}
}
