package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ValidateAndResolveFile checks that the path exists and is a regular
// file, then returns the absolute path. Exits fatally on failure.
func ValidateAndResolveFile(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatal().Str("path", path).Msg("Image not found")
		}
		log.Fatal().Err(err).Str("path", path).Msg("Failed to access image")
	}
	if info.IsDir() {
		log.Fatal().Str("path", path).Msg("Path is a directory, expected an image file")
	}

	absPath, err := filepath.Abs(path)
	if err == nil {
		path = absPath
	}

	return path
}
