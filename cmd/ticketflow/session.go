package main

import (
	"context"
	"errors"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Manage stored sessions",
}

var sessionLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			return cli.ListSessions(ctx, cmd.OutOrStdout(), rt.Engine)
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the stored snapshot of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			return cli.InspectSession(ctx, cmd.OutOrStdout(), rt.Engine, args[0])
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:     "rm [session-id]...",
	Aliases: []string{"delete"},
	Short:   "Delete stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if len(args) == 0 && !all {
			return errors.New("pass at least one session id or --all")
		}
		return withRuntime(cmd, func(ctx context.Context, rt *cli.Runtime) error {
			return cli.RemoveSessions(ctx, cmd.OutOrStdout(), rt.Engine, args, all)
		})
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)
	sessionRmCmd.Flags().Bool("all", false, "Delete every stored session")
}
