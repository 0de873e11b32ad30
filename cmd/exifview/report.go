package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fpang/exifview/internal/capture"
	"github.com/fpang/exifview/internal/cli"
	"github.com/fpang/exifview/internal/exif"
	"github.com/rs/zerolog/log"
)

// report collects every derived quantity for one image. Pointer fields
// are nil when the quantity could not be derived, so the JSON output
// only carries what the EXIF data actually supports.
type report struct {
	Path  string `json:"path"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`

	FNumber          *float64 `json:"f_number,omitempty"`
	ExposureTime     *float64 `json:"exposure_time_s,omitempty"`
	ISO              *float64 `json:"iso,omitempty"`
	ApertureValue    *float64 `json:"aperture_value,omitempty"`
	TimeValue        *float64 `json:"time_value,omitempty"`
	ExposureValue    *float64 `json:"exposure_value,omitempty"`
	FilmSpeedValue   *float64 `json:"film_speed_value,omitempty"`
	LuminanceValue   *float64 `json:"luminance_value,omitempty"`
	AverageLuminance *float64 `json:"average_luminance,omitempty"`
	FocalLength      *float64 `json:"focal_length_mm,omitempty"`
	FocalLength35mm  *float64 `json:"focal_length_35mm_equiv_mm,omitempty"`
	ThumbnailOffset  *int64   `json:"thumbnail_offset,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	TakenAt   string   `json:"taken_at,omitempty"`
}

// optional runs one accessor and flattens a failure into nil. Derivation
// failures are expected for most images, so they only show at debug level.
func optional(path, quantity string, accessor func() (float64, error)) *float64 {
	v, err := accessor()
	if err != nil {
		log.Debug().Err(err).Str("path", path).Str("quantity", quantity).Msg("quantity unavailable")
		return nil
	}
	return &v
}

func buildReport(path string) *report {
	view, err := exif.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to parse EXIF data")
	}

	r := &report{Path: path}

	if maker, err := view.Make(); err == nil {
		r.Make = maker
	}
	if model, err := view.Model(); err == nil {
		r.Model = model
	}

	r.FNumber = optional(path, "f-number", view.FNumber)
	r.ExposureTime = optional(path, "exposure time", view.ExposureTime)
	r.ISO = optional(path, "iso", view.ISO)
	r.ApertureValue = optional(path, "aperture value", view.ApertureValue)
	r.TimeValue = optional(path, "time value", view.TimeValue)
	r.ExposureValue = optional(path, "exposure value", view.ExposureValue)
	r.FilmSpeedValue = optional(path, "film speed value", view.FilmSpeedValue)
	r.LuminanceValue = optional(path, "luminance value", view.LuminanceValue)
	r.AverageLuminance = optional(path, "average scene luminance", view.AverageLuminance)
	r.FocalLength = optional(path, "focal length", view.FocalLength)
	r.FocalLength35mm = optional(path, "35mm equivalent focal length", view.FocalLength35mm)

	if offset, err := view.ThumbnailOffset(); err == nil {
		r.ThumbnailOffset = &offset
	}

	// Capture context is best-effort; the derived report stands on its own.
	if info, err := capture.Read(path); err == nil {
		if info.HasGPS {
			r.Latitude = &info.Latitude
			r.Longitude = &info.Longitude
		}
		if info.HasDate {
			r.TakenAt = info.TakenAt.Format(time.RFC3339)
		}
	} else {
		log.Debug().Err(err).Str("path", path).Msg("capture context unavailable")
	}

	return r
}

func printJSON(r *report) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		log.Fatal().Err(err).Msg("failed to encode report")
	}
}

func printReport(r *report) {
	fmt.Println("============================================")
	fmt.Printf("EXIF Report: %s\n", filepath.Base(r.Path))
	fmt.Println("============================================")

	if r.Make != "" || r.Model != "" {
		fmt.Printf("Camera:            %s %s\n", r.Make, r.Model)
	}
	if r.TakenAt != "" {
		fmt.Printf("Taken:             %s\n", r.TakenAt)
	}
	if r.Latitude != nil && r.Longitude != nil {
		fmt.Printf("GPS:               %.6f, %.6f\n", *r.Latitude, *r.Longitude)
	}

	fmt.Println("--------------------------------------------")
	printFloat("f-number", r.FNumber, "f/%.1f")
	if r.ExposureTime != nil {
		fmt.Printf("%-18s %s\n", "Exposure time:", cli.FormatExposureTime(*r.ExposureTime))
	}
	printFloat("ISO", r.ISO, "%.0f")
	printFloat("Focal length", r.FocalLength, "%.1f mm")
	printFloat("35mm equivalent", r.FocalLength35mm, "%.1f mm")

	fmt.Println("--------------------------------------------")
	printFloat("Aperture value", r.ApertureValue, "%.2f Av")
	printFloat("Time value", r.TimeValue, "%.2f Tv")
	printFloat("Exposure value", r.ExposureValue, "%.2f Ev")
	printFloat("Film speed value", r.FilmSpeedValue, "%.2f Sv")
	printFloat("Luminance value", r.LuminanceValue, "%.2f Bv")
	printFloat("Avg luminance", r.AverageLuminance, "%.1f cd/m^2")

	if r.ThumbnailOffset != nil {
		fmt.Println("--------------------------------------------")
		fmt.Printf("%-18s byte %d\n", "Thumbnail at:", *r.ThumbnailOffset)
	}
	fmt.Println()
}

func printFloat(label string, value *float64, format string) {
	if value == nil {
		return
	}
	fmt.Printf("%-18s %s\n", label+":", fmt.Sprintf(format, *value))
}
