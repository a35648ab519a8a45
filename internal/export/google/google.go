// Package google exports ledger transactions to a Google Sheets
// spreadsheet, the household's backup copy of the ledger.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"financeiro/internal/core"
	"financeiro/internal/store"
)

const dateLayout = "2006-01-02"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name without year (e.g. "Lançamentos"); code prefixes the
	// transaction's year so each year gets its own sheet.
	sheetBase string
}

var _ store.TransactionExporter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Lançamentos").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetBase := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetBase == "" {
		sheetBase = "Lançamentos"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportTransaction appends one transaction as a row on the sheet for
// its year and returns the row reference.
func (c *Client) ExportTransaction(ctx context.Context, tx core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, tx.Date.Year())

	// Find the next empty row from the sheet dimensions.
	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", sheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:E%d", sheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		tx.Date.Format(dateLayout),
		tx.Description,
		string(tx.Type),
		tx.Amount.Reais(),
		methodsSummary(tx.PaymentMethods),
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	slog.InfoContext(ctx, "Exported transaction to sheet",
		"id", tx.ID,
		"sheet", sheet,
		"row", nextRow)
	return dataRange, nil
}

// RemoveExported clears the first row matching the transaction's date,
// description and amount. Missing rows are not an error, the export is
// best-effort and the database stays the source of truth.
func (c *Client) RemoveExported(ctx context.Context, tx core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, tx.Date.Year())
	rng := fmt.Sprintf("%s!A:D", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	wantDate := tx.Date.Format(dateLayout)
	for i, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) < 4 {
			continue
		}
		if cols[0] != wantDate || !strings.EqualFold(cols[1], tx.Description) {
			continue
		}
		if !amountMatches(cols[3], tx.Amount.Cents) {
			continue
		}

		clearRange := fmt.Sprintf("%s!A%d:E%d", sheet, i+1, i+1)
		_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("clear %s: %w", clearRange, err)
		}
		slog.InfoContext(ctx, "Removed exported transaction row",
			"id", tx.ID,
			"sheet", sheet,
			"row", i+1)
		return nil
	}

	slog.WarnContext(ctx, "Exported row not found, nothing to remove",
		"id", tx.ID,
		"sheet", sheet,
		"date", wantDate)
	return nil
}

func methodsSummary(methods []core.PaymentMethod) string {
	if len(methods) == 0 {
		return ""
	}
	parts := make([]string, len(methods))
	for i, m := range methods {
		parts[i] = fmt.Sprintf("%s %s", m.Method, core.FormatBRL(m.Amount.Cents))
	}
	return strings.Join(parts, " | ")
}

func amountMatches(cell string, wantCents int64) bool {
	cents, err := core.ParseDecimalToCents(normalizeAmountCell(cell))
	if err != nil {
		return false
	}
	return cents == wantCents
}

// normalizeAmountCell strips currency markers and thousands separators
// from locale-formatted cell text ("R$ 1.234,56", "1,234.56") so it
// parses as a plain decimal. The last separator wins as the decimal
// mark.
func normalizeAmountCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	return s
}

func yearPrefixedName(base string, year int) string {
	return fmt.Sprintf("%d %s", year, strings.TrimSpace(base))
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
