// Package google appends monthly summaries to a Google Sheets archive.
//
// Auth uses an OAuth client plus a previously minted token (see
// cmd/oauth-init); both can come from files or inline JSON.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"bilancio/internal/export"
	"bilancio/internal/report"
)

type Config struct {
	SpreadsheetID   string
	SheetName       string
	OAuthClientFile string
	OAuthTokenFile  string
	OAuthClientJSON string
	OAuthTokenJSON  string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.SummaryWriter = (*Client)(nil)

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}

	clientJSON, err := readCredential(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client credentials: %w", err)
	}
	tokenJSON, err := readCredential(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}

	oauthCfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth config: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	// The oauth2 client refreshes the access token transparently.
	httpClient := oauthCfg.Client(ctx, &token)
	svc, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

func readCredential(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return b, nil
	default:
		return nil, errors.New("neither inline JSON nor file provided")
	}
}

// Append writes one summary row and returns its A1 reference.
func (c *Client) Append(ctx context.Context, ownerID string, s report.Summary) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row := summaryRow(ownerID, s)
	rng := fmt.Sprintf("%s!A:J", c.sheetName)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}
	if resp.Updates == nil || resp.Updates.UpdatedRange == "" {
		return rng, nil
	}
	return resp.Updates.UpdatedRange, nil
}

// summaryRow flattens a summary into the archive columns:
// owner, month, expense count, total expense, total owed, net spending,
// income count, total income, net balance, savings rate.
func summaryRow(ownerID string, s report.Summary) []any {
	return []any{
		ownerID,
		s.Month,
		s.ExpenseCount,
		s.TotalExpense.String(),
		s.TotalOwed.String(),
		s.NetSpending.String(),
		s.IncomeCount,
		s.TotalIncome.String(),
		s.NetBalance.String(),
		s.SavingsRate.String(),
	}
}
