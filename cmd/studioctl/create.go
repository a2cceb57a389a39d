package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Corphon/MagicStudio/internal/models"
)

var createCmd = &cobra.Command{
	Use:   "create <idea>",
	Short: "Run one creation attempt",
	Long: `Create moderates the idea and, when it is approved, illustrates it. The
image is written to --out; without --out only the outcome is printed. Every
non-empty idea is recorded in the history, whatever the outcome.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return runCreate(cmd, strings.Join(args, " "), func(*models.AttemptResult) string { return out })
	},
}

func init() {
	createCmd.Flags().StringP("out", "o", "", "write the illustration to this file")
	rootCmd.AddCommand(createCmd)
}

// runCreate runs one attempt and writes the illustration to the path dest
// picks for the result; an empty path skips writing.
func runCreate(cmd *cobra.Command, idea string, dest func(*models.AttemptResult) string) error {
	result, err := studio.Creation().Create(cmd.Context(), idea)
	if result == nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "[%s] %s\n", result.State, result.UserMessage)
	if result.Detail != "" && result.State != models.StateRejected {
		fmt.Fprintf(w, "Error: %s\n", result.Detail)
	}

	if ill := result.Illustration; ill != nil {
		fmt.Fprintf(w, "prompt: %s\n", ill.Prompt)
		if out := dest(result); out != "" {
			if writeErr := os.WriteFile(out, ill.Data, 0644); writeErr != nil {
				return fmt.Errorf("failed to write illustration: %w", writeErr)
			}
			fmt.Fprintf(w, "saved %d bytes (%s) to %s\n", len(ill.Data), ill.MIMEType, out)
		}
	}

	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	return nil
}

// extensionFor maps an illustration MIME type to a file extension
func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
