// Package capture reads the capture context of a photo: where and when
// it was taken and which camera took it. It complements the derived
// exposure quantities in internal/exif, which work tag-by-tag; here the
// imagemeta library does the heavy lifting (HEIC/JPEG/TIFF containers,
// GPS rational conversion, timezone-aware timestamps).
package capture

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// Info holds the capture context extracted from an image.
type Info struct {
	Latitude  float64
	Longitude float64
	HasGPS    bool

	TakenAt time.Time
	HasDate bool

	CameraMake  string
	CameraModel string
}

// Read extracts the capture context from the image at path.
//
// Timestamps follow the fallback chain DateTimeOriginal > CreateDate >
// ModifyDate. GPS coordinates come back already converted from the EXIF
// rational format, with reference direction applied.
func Read(path string) (*Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	exifData, err := imagemeta.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	info := &Info{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}

	gps := exifData.GPS
	if gps.Latitude() != 0 || gps.Longitude() != 0 {
		info.Latitude = gps.Latitude()
		info.Longitude = gps.Longitude()
		info.HasGPS = true
	}

	switch {
	case !exifData.DateTimeOriginal().IsZero():
		info.TakenAt = exifData.DateTimeOriginal()
		info.HasDate = true
	case !exifData.CreateDate().IsZero():
		info.TakenAt = exifData.CreateDate()
		info.HasDate = true
	case !exifData.ModifyDate().IsZero():
		info.TakenAt = exifData.ModifyDate()
		info.HasDate = true
	}

	log.Debug().
		Str("path", path).
		Bool("has_gps", info.HasGPS).
		Bool("has_date", info.HasDate).
		Msg("Capture context extraction complete")

	return info, nil
}

// Camera returns the make and model as a single display string.
func (i *Info) Camera() string {
	return strings.TrimSpace(i.CameraMake + " " + i.CameraModel)
}
