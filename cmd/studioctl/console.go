package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/services"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive drawing session in the terminal",
	Long: `Console reads one idea per line and runs it through the pipeline.
Illustrations are saved under --dir. Type "parents" to read the history
and "exit" to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		return runConsole(cmd, cmd.InOrStdin(), dir)
	},
}

func init() {
	consoleCmd.Flags().String("dir", "drawings", "directory for saved illustrations")
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, in io.Reader, dir string) error {
	w := cmd.OutOrStdout()
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(w, "🎨 MagicStudio console")
	fmt.Fprintln(w, "Describe a drawing, or type \"parents\" / \"exit\".")

	for {
		idea, ok := prompt(w, scanner, "idea> ")
		if !ok {
			return nil
		}

		switch strings.ToLower(strings.TrimSpace(idea)) {
		case "exit", "quit":
			return nil
		case "parents":
			password, ok := prompt(w, scanner, "password> ")
			if !ok {
				return nil
			}
			showPanel(w, cmd, password)
			continue
		case "":
			fmt.Fprintln(w, services.MsgEmptyIdea)
			continue
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		dest := func(result *models.AttemptResult) string {
			return drawingPath(dir, time.Now(), result)
		}
		if err := runCreate(cmd, idea, dest); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
	}
}

// drawingPath names a saved illustration after its time and attempt id
func drawingPath(dir string, at time.Time, result *models.AttemptResult) string {
	id := result.AttemptID
	if len(id) > 8 {
		id = id[:8]
	}
	ext := ".png"
	if result.Illustration != nil {
		ext = extensionFor(result.Illustration.MIMEType)
	}
	return filepath.Join(dir, fmt.Sprintf("drawing_%s_%s%s", at.Format("20060102_150405"), id, ext))
}

func prompt(w io.Writer, scanner *bufio.Scanner, label string) (string, bool) {
	fmt.Fprint(w, label)
	if !scanner.Scan() {
		return "", false
	}
	return scanner.Text(), true
}

func showPanel(w io.Writer, cmd *cobra.Command, password string) {
	panel := studio.History().Unlock(cmd.Context(), password)
	if panel.Error != "" {
		fmt.Fprintln(w, panel.Error)
	}
	if !panel.Unlocked {
		return
	}
	if len(panel.Records) == 0 {
		fmt.Fprintln(w, "No drawings recorded yet.")
		return
	}
	for _, rec := range panel.Records {
		fmt.Fprintf(w, "[%s] - %s | Status: %s\n", rec.Timestamp, rec.Prompt, rec.Outcome)
	}
}
