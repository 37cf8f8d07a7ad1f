package main

import (
	"github.com/spf13/cobra"

	"teambudget/internal/cli"
	"teambudget/internal/config"
	"teambudget/internal/log"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "teambudget",
		Short: "Budget and payment tracker for a youth sports team",
		Long: `teambudget tracks a team's roster, budgeted expenses and bank ledger,
and works out what each player owes after sponsorships, credits and
overflow are spread across the roster.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("env-file", ".env", "Environment file to load before reading configuration")

	root.AddCommand(serveCommand())
	root.AddCommand(workerCommand())
	root.AddCommand(reportCommand())
	return root
}

// setup loads the env file and configuration shared by every subcommand.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := cli.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, cli.SetupLogger(cfg, cmd.OutOrStdout()), nil
}
