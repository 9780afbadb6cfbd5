package main

import (
	"context"
	"fmt"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/aretw0/ticketflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the automaton as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD). With --session the session trace is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		withErrors, _ := cmd.Flags().GetBool("errors")

		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			var opts []graph.Option
			if withErrors {
				opts = append(opts, graph.WithErrorEdges())
			}
			var overlay *graph.GraphOverlay
			if session != "" {
				snap, err := rt.Engine.LoadSession(ctx, session)
				if err != nil {
					return err
				}
				overlay = graph.OverlayFromTrace(snap.Trace)
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(rt.Engine.Table(), overlay, opts...))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the trace of a stored session")
	graphCmd.Flags().Bool("errors", false, "Draw the moves into the error state")
}
