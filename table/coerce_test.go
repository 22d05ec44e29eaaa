package table

import (
	"fmt"
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lookout/schema"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		in      Value
		to      schema.FieldType
		want    Value
		wantErr bool
	}{
		{"null passes", Null(), schema.FieldTypeFloat32, Null(), false},
		{"int to float", Int(3), schema.FieldTypeFloat32, Float(3), false},
		{"bool to float", Bool(true), schema.FieldTypeFloat32, Float(1), false},
		{"numeric string to float", String(" 0.25 "), schema.FieldTypeFloat32, Float(0.25), false},
		{"text to float", String("high"), schema.FieldTypeFloat32, Value{}, true},
		{"float32 overflow", Float(1e300), schema.FieldTypeFloat32, Value{}, true},
		{"float truncates to int", Float(-3.9), schema.FieldTypeInt64, Int(-3), false},
		{"nan to int", Float(math.NaN()), schema.FieldTypeInt64, Value{}, true},
		{"huge float to int", Float(1e19), schema.FieldTypeInt64, Value{}, true},
		{"string to int", String("42"), schema.FieldTypeInt64, Int(42), false},
		{"decimal string to int", String("4.2"), schema.FieldTypeInt64, Value{}, true},
		{"bool to int", Bool(true), schema.FieldTypeInt64, Int(1), false},
		{"int to bool", Int(0), schema.FieldTypeBool, Bool(false), false},
		{"float to bool", Float(0.5), schema.FieldTypeBool, Bool(true), false},
		{"string to bool", String("true"), schema.FieldTypeBool, Bool(true), false},
		{"bad string to bool", String("yes please"), schema.FieldTypeBool, Value{}, true},
		{"int to string", Int(7), schema.FieldTypeString, String("7"), false},
		{"float to string", Float(0.5), schema.FieldTypeString, String("0.5"), false},
		{"bool to string", Bool(false), schema.FieldTypeString, String("false"), false},
		{"invalid value", Value{}, schema.FieldTypeString, Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.in, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrCoercion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny(t *testing.T) {
	f := 1.5
	var nilFloat *float64
	var nilInt *int
	var nilURL *url.URL
	var nilStringer fmt.Stringer = nilURL

	tests := []struct {
		in      any
		want    Value
		wantErr bool
	}{
		{nil, Null(), false},
		{nilFloat, Null(), false},
		{nilInt, Null(), false},
		{nilURL, Null(), false},
		{nilStringer, Null(), false},
		{map[string]int(nil), Null(), false},
		{&f, Float(1.5), false},
		{float32(0.5), Float(0.5), false},
		{7, Int(7), false},
		{uint8(7), Int(7), false},
		{"x", String("x"), false},
		{true, Bool(true), false},
		{uint64(math.MaxUint64), Value{}, true},
		{struct{}{}, Value{}, true},
		{schema.FieldTypeBool, String("Bool"), false},
	}

	for _, tt := range tests {
		got, err := FromAny(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%T", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%T", tt.in)
	}
}

func TestRowFromAny_InvalidBecomesNullOnBuild(t *testing.T) {
	s := schema.MustNew(schema.Field{Name: "a", Type: schema.FieldTypeString})

	row := RowFromAny(map[string]any{"a": struct{}{}})
	tbl, coerced, _ := BuildRow(s, row)

	require.Len(t, coerced, 1)
	assert.Equal(t, "a", coerced[0].Field)
	assert.True(t, tbl.Column(0).IsNull(0))
}
