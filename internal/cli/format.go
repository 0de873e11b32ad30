package cli

import "fmt"

// FormatExposureTime renders an exposure time the way photographers read
// it: fractional seconds as a reciprocal (1/125 s), longer exposures in
// plain seconds.
func FormatExposureTime(seconds float64) string {
	if seconds <= 0 {
		return fmt.Sprintf("%g s", seconds)
	}
	if seconds < 1 {
		return fmt.Sprintf("1/%.0f s", 1/seconds)
	}
	return fmt.Sprintf("%.1f s", seconds)
}
