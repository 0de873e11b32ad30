package main

import (
	"os"

	"github.com/fpang/exifview/internal/cli"
	"github.com/fpang/exifview/internal/logging"
	"github.com/spf13/cobra"
)

// CLI flags
var (
	jsonFlag bool
)

// rootCmd is the main Cobra command for the exifview CLI.
var rootCmd = &cobra.Command{
	Use:   "exifview [image]...",
	Short: "Inspect derived photographic quantities from image EXIF data",
	Long: `Exifview reads the EXIF tags of an image and reports photographically
meaningful quantities: f-number, exposure time, ISO, APEX aperture/time/
speed values, scene luminance, and the 35mm-equivalent focal length.

Cameras often record only a subset of the underlying tags. Where a value
is missing, exifview derives it from related tags (e.g. the f-number from
the APEX ApertureValue, or the 35mm equivalent from the focal plane
geometry); quantities that cannot be derived are reported as unavailable.

Examples:
  exifview IMG_1234.jpg
  exifview --json photo.jpg > report.json
  exifview *.jpg
  exifview  # Interactive mode - prompts for an image path`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the report as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	if len(args) == 0 {
		args = []string{cli.PromptForImage()}
	}

	for _, arg := range args {
		path := cli.ValidateAndResolveFile(arg)
		report := buildReport(path)
		if jsonFlag {
			printJSON(report)
		} else {
			printReport(report)
		}
	}
}
