package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForImage prompts the user interactively for an image path.
// Exits fatally if no path is entered.
func PromptForImage() string {
	fmt.Print("Image path: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}

	input = strings.TrimSpace(input)
	if input == "" {
		log.Fatal().Msg("No image path provided")
	}

	return input
}
