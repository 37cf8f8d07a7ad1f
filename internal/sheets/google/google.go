package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"teambudget/internal/log"
	"teambudget/internal/report"
	ports "teambudget/internal/sheets"
)

var _ ports.ReportPublisher = (*Client)(nil)

// Default tab names.
const (
	DefaultLedgerSheet  = "Ledger"
	DefaultPlayersSheet = "Players"
)

// Client overwrites two tabs of a spreadsheet with the latest reports.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
	playersSheet  string
	logger        *log.Logger
}

// Config selects the spreadsheet and its tabs.
type Config struct {
	SpreadsheetID string
	LedgerSheet   string
	PlayersSheet  string
}

// New creates a Sheets client authenticated with service account credentials
// from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg, logger), nil
}

func newClient(svc *gsheet.Service, cfg Config, logger *log.Logger) *Client {
	ledger := strings.TrimSpace(cfg.LedgerSheet)
	if ledger == "" {
		ledger = DefaultLedgerSheet
	}
	players := strings.TrimSpace(cfg.PlayersSheet)
	if players == "" {
		players = DefaultPlayersSheet
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		ledgerSheet:   ledger,
		playersSheet:  players,
		logger:        logger,
	}
}

func newSheetsService(ctx context.Context, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	logger.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// PublishReports replaces the ledger and players tabs. Each tab is cleared
// first so shorter reports leave no stale rows behind.
func (c *Client) PublishReports(ctx context.Context, snapshotID int64, b report.Budget, l report.Ledger) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := c.replace(ctx, c.ledgerSheet, ledgerRows(snapshotID, l)); err != nil {
		return err
	}
	if err := c.replace(ctx, c.playersSheet, playerRows(b, l)); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "Published reports to Google Sheets",
		"snapshot_id", snapshotID,
		"ledger_sheet", c.ledgerSheet,
		"players_sheet", c.playersSheet)
	return nil
}

func (c *Client) replace(ctx context.Context, sheet string, rows [][]any) error {
	clearRange := fmt.Sprintf("%s!A:Z", sheet)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	rng := fmt.Sprintf("%s!A1", sheet)
	vr := &gsheet.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}
