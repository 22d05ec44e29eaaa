package lookout

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lookout/logstore"
)

var (
	// ErrValidation is returned when a logging request is rejected before any I/O.
	ErrValidation = errors.New("validation failed")

	// ErrIO is matched by every *ErrStoreIO.
	ErrIO = errors.New("store i/o failed")

	// ErrClosed is returned by operations on a closed Logger.
	ErrClosed = errors.New("logger is closed")
)

// ErrMissingField indicates that a mandatory field is absent from a logging request.
type ErrMissingField struct {
	Field string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("missing mandatory field: %s", e.Field)
}

func (e *ErrMissingField) Unwrap() error { return ErrValidation }

// ErrStoreIO indicates that reading, decoding or writing the log failed.
//
// Op is one of "open", "read" or "write". The original underlying error can be
// accessed via errors.Unwrap. A log whose stored column types conflict with the
// enabled schema is reported as an "open" failure wrapping
// logstore.ErrSchemaConflict: the object is treated as unusable, like a corrupt one.
type ErrStoreIO struct {
	Op     string
	Object string
	cause  error
}

func (e *ErrStoreIO) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Object, e.cause)
}

func (e *ErrStoreIO) Unwrap() error { return e.cause }

// Is makes every ErrStoreIO match ErrIO.
func (e *ErrStoreIO) Is(target error) bool { return target == ErrIO }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var opErr *logstore.OpError
	if errors.As(err, &opErr) {
		return &ErrStoreIO{Op: opErr.Op, Object: opErr.Object, cause: opErr.Err}
	}
	if errors.Is(err, logstore.ErrNullMandatory) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if errors.Is(err, logstore.ErrClosed) {
		return ErrClosed
	}

	return err
}
