package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"teambudget/internal/amqp"
	"teambudget/internal/cli"
	"teambudget/internal/config"
	"teambudget/internal/log"
	"teambudget/internal/services"
	"teambudget/internal/sheets"
	gsheet "teambudget/internal/sheets/google"
	"teambudget/internal/sheets/memory"
	"teambudget/internal/storage"
	"teambudget/internal/worker"
)

func workerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Publish saved snapshots to the team spreadsheet",
		Long: `The worker reads snapshots from the SQLite database shared with the
server and publishes the budget and ledger reports of the newest one.
It reacts to AMQP messages when AMQP_URL is set and polls otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runWorker(ctx, cfg, logger)
		},
	}
}

func runWorker(parent context.Context, cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.GracefulShutdown(parent, logger)
	defer stop()

	logger.Info("Starting teambudget worker", log.FieldOperation, log.OpStartup)

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		return fmt.Errorf("open snapshot database %s: %w", cfg.SQLiteDBPath, err)
	}
	defer repo.Close()

	var publisher sheets.ReportPublisher
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			LedgerSheet:   cfg.GoogleLedgerSheet,
			PlayersSheet:  cfg.GooglePlayersSheet,
		}, logger)
		if err != nil {
			return fmt.Errorf("initialize Google Sheets client: %w", err)
		}
		publisher = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		publisher = memory.New()
		logger.Info("Google Sheets disabled, reports are kept in memory")
	}

	var consumer worker.Consumer
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return fmt.Errorf("initialize AMQP client: %w", err)
		}
		defer client.Close()
		consumer = client
	}

	syncer := services.NewSyncer(repo, publisher, logger)
	pc := services.DefaultSyncProcessorConfig()
	pc.PollInterval = cfg.SyncInterval
	pc.Retention = cfg.SnapshotRetention
	processor := services.NewSyncProcessor(syncer, repo, pc, logger)

	err = worker.NewSyncWorker(syncer, consumer, processor, logger).Run(ctx)
	logger.Info("Worker stopped", log.FieldOperation, log.OpShutdown)
	return err
}
