package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/ticketflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ticketflow version %s\n", strings.TrimSpace(ticketflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
