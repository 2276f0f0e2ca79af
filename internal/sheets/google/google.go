package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	ports "github.com/davidsheshee-hash/shop-ledger/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger

	mu    sync.Mutex
	known map[string]bool // sheet titles seen in the spreadsheet
}

// New creates a Sheets client from service account credentials. Extra
// client options are appended after the credential options.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	options, err := credentialOptions(cfg)
	if err != nil {
		return nil, err
	}
	options = append(options, opts...)

	svc, err := gsheet.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        log.OrDefault(logger, log.ComponentSheets),
		known:         make(map[string]bool),
	}, nil
}

// credentialOptions prefers inline JSON, then a file, then
// GOOGLE_APPLICATION_CREDENTIALS. With none set, no credential option is
// returned and the caller must supply one.
func credentialOptions(cfg Config) ([]goption.ClientOption, error) {
	credentialsJSON := strings.TrimSpace(cfg.CredentialsJSON)
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if credentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case credentialsJSON != "":
		return []goption.ClientOption{
			goption.WithCredentialsJSON([]byte(credentialsJSON)),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	case credentialsFile != "":
		data, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return []goption.ClientOption{
			goption.WithCredentialsJSON(data),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	default:
		return nil, nil
	}
}

// WriteReport clears the target sheet and writes the report from A1,
// creating the sheet when the spreadsheet does not have it yet.
func (c *Client) WriteReport(ctx context.Context, r ports.Report) error {
	if r.Sheet == "" {
		return errors.New("report without sheet name")
	}
	if err := c.ensureSheet(ctx, r.Sheet); err != nil {
		return err
	}

	sheetRange := quoteSheet(r.Sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, sheetRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", r.Sheet, err)
	}

	vr := &gsheet.ValueRange{Values: r.Values()}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, sheetRange+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("update sheet %s: %w", r.Sheet, err)
	}

	c.logger.InfoContext(ctx, "Report written",
		log.FieldOperation, log.OpReport, "sheet", r.Sheet, log.FieldCount, len(r.Rows))
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.known[title] {
		return nil
	}
	if len(c.known) == 0 {
		ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read spreadsheet: %w", err)
		}
		for _, s := range ss.Sheets {
			if s.Properties != nil {
				c.known[s.Properties.Title] = true
			}
		}
		if c.known[title] {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	c.known[title] = true
	c.logger.InfoContext(ctx, "Sheet created", "sheet", title)
	return nil
}

// quoteSheet wraps a sheet title in single quotes for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
