package imagemetric

import "errors"

var (
	// ErrUnknownMetric is returned by ParseID and reported for ids that are not registered.
	ErrUnknownMetric = errors.New("imagemetric: unknown metric")
	// ErrDuplicateMetric is returned by Register when the id is already taken.
	ErrDuplicateMetric = errors.New("imagemetric: duplicate metric")
	// ErrNoImage is reported when a metric needs an image and none was given.
	ErrNoImage = errors.New("imagemetric: no image")
	// ErrInvalidBBox is reported when a metric needs a bounding box and the box is missing or degenerate.
	ErrInvalidBBox = errors.New("imagemetric: invalid bounding box")
	// ErrShape is reported when pixel data does not have the dimensions a metric needs.
	ErrShape = errors.New("imagemetric: unsupported pixel shape")
	// ErrNonFinite is reported when a formula produces NaN or ±Inf.
	ErrNonFinite = errors.New("imagemetric: non-finite result")
	// ErrDecode wraps image decoding failures.
	ErrDecode = errors.New("imagemetric: decode failed")
)
