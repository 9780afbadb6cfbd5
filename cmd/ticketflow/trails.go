package main

import (
	"context"
	"fmt"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/spf13/cobra"
)

var trailsCmd = &cobra.Command{
	Use:   "trails",
	Short: "Work with the catalog of example trails",
}

var trailsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the example trails and their expected verdicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			return cli.PrintTrails(cmd.OutOrStdout(), rt.Engine.Catalog().All(), asJSON)
		})
	},
}

var trailsRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print one trail picked uniformly at random",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			trail := rt.Engine.PickRandomTrail()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", trail.Seq, trail.Expected)
			return nil
		})
	},
}

var trailsVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Evaluate every trail and compare with its expected verdict",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.VerifyCatalog(cmd.OutOrStdout(), cfg.Catalog.Path)
	},
}

func init() {
	rootCmd.AddCommand(trailsCmd)
	trailsCmd.AddCommand(trailsListCmd, trailsRandomCmd, trailsVerifyCmd)
	trailsListCmd.Flags().Bool("json", false, "Print the trails as JSON")
}
