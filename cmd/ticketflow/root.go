package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/ticketflow/internal/cli"
	"github.com/aretw0/ticketflow/internal/config"
	"github.com/spf13/cobra"
)

var (
	v   = config.New()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "ticketflow",
	Short:         "ticketflow runs the ticket booking workflow as a finite automaton",
	Long:          `ticketflow validates booking sequences (auth, select, avail_ok, ...) against a deterministic finite automaton, interactively, over HTTP or as MCP tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(v, path)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: ./ticketflow.yaml when present)")
	flags.Bool("debug", false, "Log every transition to stderr")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("store", config.BackendMemory, "Session store: memory, file, redis or sqlite")
	flags.String("store-dir", ".ticketflow", "Directory of the file and sqlite stores")
	flags.String("catalog", "", "YAML file replacing the built-in example trails")

	bindFlag(rootCmd, "log-level", "log.level")
	bindFlag(rootCmd, "store", "store.backend")
	bindFlag(rootCmd, "store-dir", "store.dir")
	bindFlag(rootCmd, "catalog", "catalog.path")
}

// bindFlag lets an explicitly set flag override the config file and the
// environment. Persistent flags are looked up before local ones.
func bindFlag(cmd *cobra.Command, name, key string) {
	flag := cmd.PersistentFlags().Lookup(name)
	if flag == nil {
		flag = cmd.Flags().Lookup(name)
	}
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// withRuntime builds the engine from the loaded configuration, runs fn with a
// signal-aware context and releases the store afterwards.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *cli.Runtime) error) error {
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return err
	}
	rt, err := cli.NewRuntime(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cli.NewSignalContext(cmd.Context())
	defer ctx.Cancel()

	err = fn(ctx, rt)
	if sig := ctx.Signal(); sig != nil {
		logger.Debug("Stopped by signal", "signal", sig.String())
	}
	return err
}
