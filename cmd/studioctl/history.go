package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the creation history, newest first",
	Long: `History requires the parental password, the same secret the parents'
corner of the web studio asks for.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		asJSON, _ := cmd.Flags().GetBool("json")

		if err := studio.History().Authorize(password); err != nil {
			return err
		}
		records, err := studio.History().Recent(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "    ")
			return enc.Encode(records)
		}
		if len(records) == 0 {
			fmt.Fprintln(w, "No drawings recorded yet.")
			return nil
		}
		for _, rec := range records {
			line := fmt.Sprintf("[%s] - %s | Status: %s", rec.Timestamp, rec.Prompt, rec.Outcome)
			if rec.Detail != "" {
				line += " (" + rec.Detail + ")"
			}
			fmt.Fprintln(w, line)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringP("password", "p", "", "parental password")
	historyCmd.Flags().Bool("json", false, "print the records as JSON")
	rootCmd.AddCommand(historyCmd)
}
