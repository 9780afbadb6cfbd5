package main

import (
	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the automaton and the trail catalog",
	Long: `Builds the transition table, checking totality and sink absorption, and
evaluates every catalog trail against its expected verdict.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(cmd.OutOrStdout(), cfg.Catalog.Path)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
