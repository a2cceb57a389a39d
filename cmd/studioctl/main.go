// Package main is the command-line companion of MagicStudio: it runs
// creation attempts, reads the history, and serves the web studio.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Corphon/MagicStudio/internal/app"
	"github.com/Corphon/MagicStudio/internal/config"
	"github.com/Corphon/MagicStudio/internal/utils"
)

// version is set at build time via ldflags.
var version = "dev"

// studio is built once per invocation by PersistentPreRunE
var (
	studio    *app.App
	studioCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:     "studioctl",
	Short:   "Drive the MagicStudio drawing studio from a terminal",
	Version: version,
	Long: `studioctl runs the same pipeline as the web studio. An idea is checked by
the moderator, illustrated when approved, and recorded in the creation history.

Configuration comes from the environment (and an optional .env file), exactly
as for the server. Use --demo to run with offline mock providers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if demo, _ := cmd.Flags().GetBool("demo"); demo {
			cfg.DemoMode = true
			cfg.Text.Provider = config.ProviderMock
			cfg.Image.Provider = config.ProviderMock
			cfg.Image.Extractor = config.DefaultExtractor(config.ProviderMock)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.EnsureDirs(); err != nil {
			return err
		}
		// stdout carries command output only
		utils.GetLogger().SetConsoleOutput(cmd.ErrOrStderr())
		if err := utils.InitLogger(cfg.LogFile()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "log file unavailable: %v\n", err)
		}

		studio, err = app.New(cfg)
		if err != nil {
			return err
		}
		studioCfg = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if studio != nil {
			studio.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("demo", false, "use offline mock providers; no credential needed")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if studio != nil {
			studio.Close()
		}
		os.Exit(1)
	}
}
