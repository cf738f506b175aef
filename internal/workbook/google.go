package workbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"screener/internal/config"
)

// Environment variables read by GoogleFromEnv.
const (
	EnvSheetID     = "SHEET_ID"
	EnvCredentials = "GOOGLE_SHEETS_CREDENTIALS"
)

// ErrMissingCredentials is returned when the Sheets environment is incomplete.
var ErrMissingCredentials = errors.New("missing google sheets credentials")

var updatedRowPattern = regexp.MustCompile(`![A-Z]+(\d+)`)

// Google is a Store backed by the Sheets v4 API.
type Google struct {
	service       *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// GoogleFromEnv builds a Google store from SHEET_ID and the service account
// JSON in GOOGLE_SHEETS_CREDENTIALS.
func GoogleFromEnv(ctx context.Context) (*Google, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv(EnvSheetID))
	credentials := strings.TrimSpace(os.Getenv(EnvCredentials))
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvSheetID)
	}
	if credentials == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrMissingCredentials, EnvCredentials)
	}
	return NewGoogle(ctx, spreadsheetID,
		option.WithCredentialsJSON([]byte(credentials)),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
}

// NewGoogle builds a Google store for spreadsheetID.
func NewGoogle(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*Google, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Google{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetIDs:      map[string]int64{},
	}, nil
}

// Close is a no-op; the HTTP client needs no teardown.
func (g *Google) Close() error {
	return nil
}

func (g *Google) Read(ctx context.Context, tab string) ([][]string, error) {
	resp, err := g.service.Spreadsheets.Values.Get(g.spreadsheetID, quoteTab(tab)+"!A:Z").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tab, err)
	}
	out := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellText(cell)
		}
		out[i] = cells
	}
	return out, nil
}

func (g *Google) Append(ctx context.Context, tab string, row []string) (int, error) {
	body := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(row)}}
	resp, err := g.service.Spreadsheets.Values.Append(g.spreadsheetID, quoteTab(tab)+"!A1", body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("append %s: %w", tab, err)
	}
	if resp.Updates == nil {
		return 0, fmt.Errorf("append %s: response has no updated range", tab)
	}
	return parseUpdatedRow(resp.Updates.UpdatedRange)
}

func (g *Google) Update(ctx context.Context, tab string, row int, cells []string) error {
	body := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(cells)}}
	rng := fmt.Sprintf("%s!A%d", quoteTab(tab), row)
	if _, err := g.service.Spreadsheets.Values.Update(g.spreadsheetID, rng, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("update %s row %d: %w", tab, row, err)
	}
	return nil
}

func (g *Google) Format(ctx context.Context, tab string, row int, width int, color config.Color) error {
	sheetID, err := g.sheetID(ctx, tab)
	if err != nil {
		return err
	}
	if width < 1 {
		width = 1
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(row - 1),
					EndRowIndex:      int64(row),
					StartColumnIndex: 0,
					EndColumnIndex:   int64(width),
					ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: &sheets.Color{
							Red:             color.Red,
							Green:           color.Green,
							Blue:            color.Blue,
							ForceSendFields: []string{"Red", "Green", "Blue"},
						},
					},
				},
				Fields: "userEnteredFormat.backgroundColor",
			},
		}},
	}
	if _, err := g.service.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("format %s row %d: %w", tab, row, err)
	}
	return nil
}

func (g *Google) sheetID(ctx context.Context, tab string) (int64, error) {
	g.mu.Lock()
	id, ok := g.sheetIDs[tab]
	g.mu.Unlock()
	if ok {
		return id, nil
	}
	resp, err := g.service.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("load sheet ids: %w", err)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, sheet := range resp.Sheets {
		if sheet.Properties == nil {
			continue
		}
		g.sheetIDs[sheet.Properties.Title] = sheet.Properties.SheetId
	}
	id, ok = g.sheetIDs[tab]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	return id, nil
}

// parseUpdatedRow extracts the first row number of an A1 range such as
// "'Sheet2'!A5:I5".
func parseUpdatedRow(updatedRange string) (int, error) {
	match := updatedRowPattern.FindStringSubmatch(updatedRange)
	if match == nil {
		return 0, fmt.Errorf("unexpected updated range %q", updatedRange)
	}
	return strconv.Atoi(match[1])
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func cellText(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func toInterfaces(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, cell := range cells {
		out[i] = cell
	}
	return out
}
