package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/aretw0/ticketflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Explain every symbol of the alphabet",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			md := cli.LegendMarkdown(rt.Engine.Describe())
			if !raw && cli.IsTerminal(os.Stdout) {
				if rendered, err := tui.NewRenderer()(md); err == nil {
					md = rendered
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(legendCmd)
	legendCmd.Flags().Bool("raw", false, "Print Markdown even on a terminal")
}
