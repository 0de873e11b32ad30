package exif

import (
	"fmt"
	"math"

	goexif "github.com/rwcarlsen/goexif/exif"
)

// APEX constants from the EXIF 2.2 specification. N relates the ASA
// arithmetic film speed to the ASA speed value; K is the reflected-light
// meter calibration constant.
const (
	filmSpeedScale   = 1.0 / 3.125
	meterCalibration = 12.5
)

// FocalPlaneResolutionUnit codes.
const (
	resolutionUnitInch       = 2
	resolutionUnitCentimeter = 3
)

// fullFrameDiagonal is the diagonal of the 36x24mm reference sensor that
// "35mm equivalent" focal lengths are normalized to.
var fullFrameDiagonal = math.Hypot(36, 24)

// View exposes derived photographic quantities computed from a raw EXIF
// tag store. Every accessor is a pure read over the immutable store:
// nothing is cached, repeated calls return identical results, and a View
// may be shared between goroutines.
type View struct {
	store Store
}

// NewView wraps an already-imported tag store.
func NewView(store Store) *View {
	return &View{store: store}
}

// Open parses the EXIF segment of the image at path and wraps it in a
// View. It fails with an ImportError when no EXIF data can be extracted.
func Open(path string) (*View, error) {
	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	return NewView(store), nil
}

// floatFallback reads the primary tag, and when it is absent derives the
// value from the alternate tag through convert. Only "tag absent" takes
// the alternate path; a present-but-invalid primary is a hard failure.
// When both tags are absent the alternate's error propagates.
func (v *View) floatFallback(primary, alternate goexif.FieldName, convert func(float64) float64) (float64, error) {
	val, err := v.store.Float(primary)
	if err == nil {
		return val, nil
	}
	if !IsTagNotFound(err) {
		return 0, err
	}
	alt, err := v.store.Float(alternate)
	if err != nil {
		return 0, err
	}
	return convert(alt), nil
}

// Make returns the camera manufacturer. No alternate source exists.
func (v *View) Make() (string, error) {
	return v.store.Text(goexif.Make)
}

// Model returns the camera model. No alternate source exists.
func (v *View) Model() (string, error) {
	return v.store.Text(goexif.Model)
}

// FNumber returns the linear aperture ratio, derived from the APEX
// ApertureValue when the camera only recorded that: F = 2^(Av/2).
func (v *View) FNumber() (float64, error) {
	return v.floatFallback(goexif.FNumber, goexif.ApertureValue, func(av float64) float64 {
		return math.Pow(2, av/2)
	})
}

// ExposureTime returns the exposure time in seconds, derived from the
// APEX ShutterSpeedValue when needed: t = 2^(-Tv).
func (v *View) ExposureTime() (float64, error) {
	return v.floatFallback(goexif.ExposureTime, goexif.ShutterSpeedValue, func(tv float64) float64 {
		return math.Pow(2, -tv)
	})
}

// ISO returns the arithmetic film speed, falling back to ExposureIndex.
// Speeds buried in MakerNote blocks are not dug out.
func (v *View) ISO() (float64, error) {
	return v.floatFallback(goexif.ISOSpeedRatings, goexif.ExposureIndex, func(ei float64) float64 {
		return ei
	})
}

// ApertureValue returns the APEX aperture value, derived from the
// f-number when needed: Av = 2*log2(F).
func (v *View) ApertureValue() (float64, error) {
	return v.floatFallback(goexif.ApertureValue, goexif.FNumber, func(f float64) float64 {
		return 2 * math.Log2(f)
	})
}

// TimeValue returns the APEX shutter speed value, derived from the
// exposure time when needed: Tv = log2(1/t).
func (v *View) TimeValue() (float64, error) {
	return v.floatFallback(goexif.ShutterSpeedValue, goexif.ExposureTime, func(t float64) float64 {
		return math.Log2(1 / t)
	})
}

// ExposureValue returns Ev = Tv + Av.
func (v *View) ExposureValue() (float64, error) {
	tv, err := v.TimeValue()
	if err != nil {
		return 0, err
	}
	av, err := v.ApertureValue()
	if err != nil {
		return 0, err
	}
	return tv + av, nil
}

// FilmSpeedValue returns the APEX speed value Sv = log2(ISO * N), with
// N = 1/3.125 as defined by the EXIF 2.2 spec.
func (v *View) FilmSpeedValue() (float64, error) {
	iso, err := v.ISO()
	if err != nil {
		return 0, err
	}
	return math.Log2(iso * filmSpeedScale), nil
}

// FocalLength returns the recorded focal length in mm.
func (v *View) FocalLength() (float64, error) {
	return v.store.Float(goexif.FocalLength)
}

// FocalLength35mm returns the focal length in mm as if the image sensor
// were the 36x24mm reference frame. A recorded FocalLengthIn35mmFilm of
// 0 means the camera did not know, so the value is derived from the
// focal plane geometry instead.
func (v *View) FocalLength35mm() (float64, error) {
	equiv, err := v.store.Float(goexif.FocalLengthIn35mmFilm)
	if err == nil && equiv > 0 {
		return equiv, nil
	}
	if err != nil && !IsTagNotFound(err) {
		return 0, err
	}

	focal, err := v.store.Float(goexif.FocalLength)
	if err != nil {
		return 0, err
	}
	pixelsX, err := v.store.Float(goexif.PixelXDimension)
	if err != nil {
		return 0, err
	}
	pixelsY, err := v.store.Float(goexif.PixelYDimension)
	if err != nil {
		return 0, err
	}
	resolutionX, err := v.store.Float(goexif.FocalPlaneXResolution)
	if err != nil {
		return 0, err
	}
	if resolutionX <= 0 {
		return 0, &InvalidTagValueError{Tag: goexif.FocalPlaneXResolution, Reason: "resolution must be positive"}
	}
	resolutionY, err := v.store.Float(goexif.FocalPlaneYResolution)
	if err != nil {
		return 0, err
	}
	if resolutionY <= 0 {
		return 0, &InvalidTagValueError{Tag: goexif.FocalPlaneYResolution, Reason: "resolution must be positive"}
	}

	unit := int64(resolutionUnitInch)
	if u, err := v.store.Int(goexif.FocalPlaneResolutionUnit); err == nil {
		unit = u
	} else if !IsTagNotFound(err) {
		return 0, err
	}
	var unitInMM float64
	switch unit {
	case resolutionUnitInch:
		unitInMM = 25.4
	case resolutionUnitCentimeter:
		unitInMM = 10.0
	default:
		return 0, &InvalidTagValueError{
			Tag:    goexif.FocalPlaneResolutionUnit,
			Reason: fmt.Sprintf("unrecognized unit code %d", unit),
		}
	}

	sensorWidth := unitInMM / resolutionX * pixelsX
	sensorHeight := unitInMM / resolutionY * pixelsY
	diagonal := math.Hypot(sensorWidth, sensorHeight)
	if diagonal == 0 {
		return 0, &InvalidTagValueError{Tag: goexif.PixelXDimension, Reason: "sensor diagonal is zero"}
	}
	return focal * fullFrameDiagonal / diagonal, nil
}

// LuminanceValue returns the APEX brightness value Bv, preferring the
// recorded BrightnessValue tag and otherwise computing Av + Tv - Sv.
func (v *View) LuminanceValue() (float64, error) {
	bv, err := v.store.Float(goexif.BrightnessValue)
	if err == nil {
		return bv, nil
	}
	if !IsTagNotFound(err) {
		return 0, err
	}

	av, err := v.ApertureValue()
	if err != nil {
		return 0, &InsufficientDataError{Quantity: "brightness value"}
	}
	tv, err := v.TimeValue()
	if err != nil {
		return 0, &InsufficientDataError{Quantity: "brightness value"}
	}
	sv, err := v.FilmSpeedValue()
	if err != nil {
		return 0, &InsufficientDataError{Quantity: "brightness value"}
	}
	return av + tv - sv, nil
}

// AverageLuminance estimates the average scene luminance in cd/m^2 from
// the reflected-light meter equation B = F^2 * K / (t * S).
func (v *View) AverageLuminance() (float64, error) {
	f, err := v.FNumber()
	if err != nil {
		return 0, &InsufficientDataError{Quantity: "average scene luminance"}
	}
	t, err := v.ExposureTime()
	if err != nil {
		return 0, &InsufficientDataError{Quantity: "average scene luminance"}
	}
	s, err := v.ISO()
	if err != nil {
		return 0, &InsufficientDataError{Quantity: "average scene luminance"}
	}
	return (f * f * meterCalibration) / (t * s), nil
}

// ThumbnailOffset returns the absolute file offset of the embedded
// thumbnail. The recorded offset is relative to the TIFF header, so the
// store's base offset is added.
func (v *View) ThumbnailOffset() (int64, error) {
	offset, err := v.store.Int(goexif.ThumbJPEGInterchangeFormat)
	if err != nil {
		return 0, err
	}
	return offset + v.store.BaseOffset(), nil
}
