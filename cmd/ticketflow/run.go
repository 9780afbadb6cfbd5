package main

import (
	"context"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <symbol>...",
	Short: "Evaluate a symbol sequence",
	Long: `Resets the session and consumes every symbol in order.
Exits with status 1 when the final state is not accepting.`,
	Example: `  ticketflow run auth select avail_ok choose details pay_ok
  ticketflow run "auth search select" --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		asJSON, _ := cmd.Flags().GetBool("json")

		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			return cli.RunSequence(ctx, cmd.OutOrStdout(), rt.Engine, session, args, asJSON)
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", "cli", "Session to evaluate in")
	runCmd.Flags().Bool("json", false, "Print the result as JSON")
}
