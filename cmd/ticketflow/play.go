package main

import (
	"context"
	"os"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Step through the automaton interactively",
	Long: `Starts a prompt where each line is consumed as symbols.
Commands: :run <seq>, :random, :reset, :trace, :help, :quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		asJSON, _ := cmd.Flags().GetBool("json")
		fresh, _ := cmd.Flags().GetBool("fresh")

		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			return cli.Play(ctx, rt, cli.PlayOptions{
				SessionID: session,
				JSON:      asJSON,
				Fresh:     fresh,
				In:        os.Stdin,
				Out:       os.Stdout,
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringP("session", "s", "play", "Session to resume or create")
	playCmd.Flags().Bool("json", false, "Read and write JSON Lines")
	playCmd.Flags().Bool("fresh", false, "Discard the stored session first")
}
