package exif

import (
	"errors"
	"fmt"

	goexif "github.com/rwcarlsen/goexif/exif"
)

// TagNotFoundError reports that a tag has no usable value in the store,
// either because the camera never recorded it or because the recorded
// representation cannot be read as the requested type.
type TagNotFoundError struct {
	Tag goexif.FieldName
}

func (e *TagNotFoundError) Error() string {
	return fmt.Sprintf("could not read EXIF tag %s", e.Tag)
}

// InvalidTagValueError reports a tag that is present but holds a value
// outside its legal domain. Unlike a missing tag, this never triggers a
// fallback chain: the data is there and it is wrong, so reading a
// different tag would only mask the corruption.
type InvalidTagValueError struct {
	Tag    goexif.FieldName
	Reason string
}

func (e *InvalidTagValueError) Error() string {
	return fmt.Sprintf("illegal value for EXIF tag %s: %s", e.Tag, e.Reason)
}

// InsufficientDataError is returned by composite accessors once every
// independent derivation path has been exhausted. Callers care about
// "can't compute luminance", not which of the underlying tags was the
// one missing.
type InsufficientDataError struct {
	Quantity string
}

func (e *InsufficientDataError) Error() string {
	return "insufficient EXIF information to compute " + e.Quantity
}

// ImportError reports that a file could not be parsed into a tag store.
// It is fatal to the whole view; there is no partial construction.
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("could not parse EXIF data out of %q: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// IsTagNotFound reports whether err is a TagNotFoundError. Fallback
// chains branch on this and nothing else.
func IsTagNotFound(err error) bool {
	var notFound *TagNotFoundError
	return errors.As(err, &notFound)
}
