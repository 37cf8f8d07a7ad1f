package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"teambudget/internal/backup"
	"teambudget/internal/engine"
	"teambudget/internal/report"
)

func reportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <backup.json>",
		Short: "Print the budget and ledger reports of a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			asJSON, _ := cmd.Flags().GetBool("json")
			return printReport(cmd.OutOrStdout(), args[0], kind, asJSON)
		},
	}
	cmd.Flags().String("kind", "all", "Report to print: budget, ledger or all")
	cmd.Flags().Bool("json", false, "Print the reports as JSON")
	return cmd
}

func printReport(out io.Writer, path, kind string, asJSON bool) error {
	if kind != "budget" && kind != "ledger" && kind != "all" {
		return fmt.Errorf("unknown report kind %q", kind)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	state, err := backup.Import(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	result := engine.Compute(state)
	budget := report.BuildBudget(state, result)
	ledger := report.BuildLedger(state, result)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		switch kind {
		case "budget":
			return enc.Encode(budget)
		case "ledger":
			return enc.Encode(ledger)
		}
		return enc.Encode(map[string]any{"budget": budget, "ledger": ledger})
	}

	if kind != "ledger" {
		if err := report.WriteBudget(out, budget); err != nil {
			return err
		}
	}
	if kind == "all" {
		fmt.Fprintln(out)
	}
	if kind != "budget" {
		return report.WriteLedger(out, ledger)
	}
	return nil
}
