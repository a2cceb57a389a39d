package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web studio until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "MagicStudio on http://localhost:%s\n", studioCfg.Port)
		return studio.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
