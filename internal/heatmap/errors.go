package heatmap

import "errors"

var (
	// ErrEmptyGeometry is returned when a pick carries no vertices.
	ErrEmptyGeometry = errors.New("empty pick geometry")

	// ErrInvalidDimensions is returned for a non-positive width or height.
	ErrInvalidDimensions = errors.New("invalid image dimensions")

	// ErrMalformedGeometry is returned when pick data cannot be read as
	// rows of [x, y] or [x, y, group].
	ErrMalformedGeometry = errors.New("malformed pick geometry")

	// ErrUnknownPickStyle is returned by ParsePickStyle.
	ErrUnknownPickStyle = errors.New("unknown pick style")

	// ErrMissingUserID is returned when a per-user heatmap is requested
	// without a user id.
	ErrMissingUserID = errors.New("missing user id")

	// ErrSizeMismatch is returned when composited layers differ in shape.
	ErrSizeMismatch = errors.New("layer size mismatch")
)
