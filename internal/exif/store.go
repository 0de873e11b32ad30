// Package exif derives photographically meaningful quantities from the
// raw tag set embedded in an image file. Cameras are free to record
// either the linear physical value or the logarithmic APEX value for
// most exposure parameters; the accessors here hide that choice behind
// documented fallback chains.
package exif

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"strings"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
)

func init() {
	// Register Nikon and Canon maker notes.
	goexif.RegisterParsers(mknote.All...)
}

const (
	jpegSOI  = 0xD8
	jpegAPP1 = 0xE1
	jpegSOS  = 0xDA
)

// Store is the typed tag lookup a View reads from. Lookups return
// TagNotFoundError when the tag is absent or its recorded representation
// cannot be read as the requested type.
type Store interface {
	Int(tag goexif.FieldName) (int64, error)
	Float(tag goexif.FieldName) (float64, error)
	Text(tag goexif.FieldName) (string, error)

	// BaseOffset is the file offset of the TIFF header the tag offsets
	// are relative to: the start of the APP1 payload for JPEG, 0 for
	// bare TIFF.
	BaseOffset() int64
}

// TagStore adapts a decoded goexif tag set to the Store interface. It is
// immutable after import and safe for concurrent reads.
type TagStore struct {
	x    *goexif.Exif
	base int64
}

var _ Store = (*TagStore)(nil)

// OpenStore parses the EXIF segment of the image at path.
func OpenStore(path string) (*TagStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}
	defer f.Close()

	store, err := DecodeStore(f)
	if err != nil {
		return nil, &ImportError{Path: path, Err: err}
	}
	return store, nil
}

// DecodeStore parses EXIF tags out of a JPEG or TIFF stream.
func DecodeStore(r io.ReadSeeker) (*TagStore, error) {
	base, err := tiffHeaderOffset(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	x, err := goexif.Decode(r)
	if err != nil {
		return nil, err
	}
	return &TagStore{x: x, base: base}, nil
}

// tiffHeaderOffset locates the TIFF header the tag offsets are relative
// to. For JPEG that means walking the marker segments up to the APP1
// "Exif" payload; bare TIFF starts at offset 0.
func tiffHeaderOffset(r io.ReadSeeker) (int64, error) {
	var sig [2]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return 0, err
	}
	if sig[0] != 0xFF || sig[1] != jpegSOI {
		return 0, nil
	}

	offset := int64(2)
	var hdr [4]byte
	for {
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return 0, err
		}
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return 0, err
		}
		if hdr[0] != 0xFF {
			return 0, errors.New("invalid jpeg marker")
		}
		marker := hdr[1]
		if marker == jpegSOS {
			return 0, errors.New("no exif segment before image data")
		}
		length := int64(binary.BigEndian.Uint16(hdr[2:4]))
		if length < 2 {
			return 0, errors.New("invalid jpeg segment length")
		}
		if marker == jpegAPP1 {
			var exifHdr [6]byte
			if _, err := io.ReadFull(r, exifHdr[:]); err != nil {
				return 0, err
			}
			if string(exifHdr[:]) == "Exif\x00\x00" {
				return offset + 4 + 6, nil
			}
		}
		offset += 2 + length
	}
}

func (s *TagStore) get(tag goexif.FieldName) (*tiff.Tag, error) {
	t, err := s.x.Get(tag)
	if err != nil {
		return nil, &TagNotFoundError{Tag: tag}
	}
	return t, nil
}

// Int returns the first value of tag as an integer.
func (s *TagStore) Int(tag goexif.FieldName) (int64, error) {
	t, err := s.get(tag)
	if err != nil {
		return 0, err
	}
	if t.Format() != tiff.IntVal {
		return 0, &TagNotFoundError{Tag: tag}
	}
	v, err := t.Int64(0)
	if err != nil {
		return 0, &TagNotFoundError{Tag: tag}
	}
	return v, nil
}

// Float returns the first value of tag as a float64. Rational and
// integer recordings are converted; anything else reads as absent.
func (s *TagStore) Float(tag goexif.FieldName) (float64, error) {
	t, err := s.get(tag)
	if err != nil {
		return 0, err
	}
	switch t.Format() {
	case tiff.RatVal:
		num, den, err := t.Rat2(0)
		if err != nil {
			return 0, &TagNotFoundError{Tag: tag}
		}
		if den == 0 {
			return 0, &InvalidTagValueError{Tag: tag, Reason: "rational with zero denominator"}
		}
		return float64(num) / float64(den), nil
	case tiff.IntVal:
		v, err := t.Int64(0)
		if err != nil {
			return 0, &TagNotFoundError{Tag: tag}
		}
		return float64(v), nil
	case tiff.FloatVal:
		v, err := t.Float(0)
		if err != nil {
			return 0, &TagNotFoundError{Tag: tag}
		}
		return v, nil
	default:
		return 0, &TagNotFoundError{Tag: tag}
	}
}

// Text returns the tag's ASCII value with surrounding whitespace and NUL
// padding stripped.
func (s *TagStore) Text(tag goexif.FieldName) (string, error) {
	t, err := s.get(tag)
	if err != nil {
		return "", err
	}
	v, err := t.StringVal()
	if err != nil {
		return "", &TagNotFoundError{Tag: tag}
	}
	return strings.TrimSpace(strings.Trim(v, "\x00")), nil
}

// BaseOffset implements Store.
func (s *TagStore) BaseOffset() int64 { return s.base }
