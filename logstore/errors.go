package logstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNullMandatory is returned by Append when a mandatory column would be null.
	ErrNullMandatory = errors.New("logstore: null value in mandatory column")
	// ErrSchemaConflict is returned by Open when an existing column has a
	// different type than the desired one.
	ErrSchemaConflict = errors.New("logstore: schema conflict")
	// ErrSchemaMismatch is returned by WriteSnapshot for a table whose schema
	// differs from the store schema.
	ErrSchemaMismatch = errors.New("logstore: schema mismatch")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("logstore: closed")
)

// Operations reported by OpError.
const (
	OpOpen  = "open"
	OpRead  = "read"
	OpWrite = "write"
)

// OpError describes a failed backend or codec operation on a log object.
type OpError struct {
	Op     string
	Object string
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("logstore: %s %s: %v", e.Op, e.Object, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func nullMandatory(fields []string) error {
	return fmt.Errorf("%w: %s", ErrNullMandatory, strings.Join(fields, ", "))
}
