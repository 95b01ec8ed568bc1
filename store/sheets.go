// Package store implements the ledger Sheet Store over Google Sheets, plus an in-memory
// store for tests and dry runs.
package store

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/cgim/ledger-sheets/ledger"
	"github.com/cgim/ledger-sheets/log"
)

// Sheet is a ledger.Store backed by one worksheet of a Google Sheets spreadsheet.
type Sheet struct {
	google        *sheets.Service
	drive         *drive.Service
	spreadsheetID string
	sheetID       int64
	title         string
}

// Open connects to the spreadsheet and selects the named worksheet, or the first
// worksheet if 'worksheet' is blank. 'revisions' enables Drive based revision tracking
// and requires the Drive metadata scope.
func Open(ctx context.Context, client *http.Client, spreadsheetID, worksheet string, revisions bool) (*Sheet, error) {
	google, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create new Sheets client (%w)", err)
	}

	var gdrive *drive.Service
	if revisions {
		if gdrive, err = drive.NewService(ctx, option.WithHTTPClient(client)); err != nil {
			return nil, fmt.Errorf("unable to create new Drive client (%w)", err)
		}
	}

	return open(ctx, google, gdrive, spreadsheetID, worksheet)
}

func open(ctx context.Context, google *sheets.Service, gdrive *drive.Service, spreadsheetID, worksheet string) (*Sheet, error) {
	var spreadsheet *sheets.Spreadsheet

	err := retry(ctx, func() (err error) {
		spreadsheet, err = google.Spreadsheets.Get(spreadsheetID).Fields("spreadsheetId,sheets.properties").Context(ctx).Do()
		return
	})

	if err != nil {
		return nil, fmt.Errorf("%w %v - check the spreadsheet ID and sharing permissions (%v)", ledger.ErrLedgerAccess, spreadsheetID, err)
	}

	sheet, err := getSheet(spreadsheet, worksheet)
	if err != nil {
		return nil, fmt.Errorf("%w %v (%v)", ledger.ErrLedgerAccess, spreadsheetID, err)
	}

	log.Debugf("opened spreadsheet %v  worksheet:%q  sheet-id:%v", spreadsheetID, sheet.Properties.Title, sheet.Properties.SheetId)

	return &Sheet{
		google:        google,
		drive:         gdrive,
		spreadsheetID: spreadsheet.SpreadsheetId,
		sheetID:       sheet.Properties.SheetId,
		title:         sheet.Properties.Title,
	}, nil
}

func (s *Sheet) Title() string {
	return s.title
}

// URL returns the browser URL of the worksheet.
func (s *Sheet) URL() string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%v/edit#gid=%v", s.spreadsheetID, s.sheetID)
}

func (s *Sheet) Row(ctx context.Context, row int) ([]string, error) {
	response, err := s.get(ctx, "read row", s.area(fmt.Sprintf("%d:%d", row, row)))
	if err != nil {
		return nil, err
	}

	if len(response.Values) == 0 {
		return []string{}, nil
	}

	return toStrings(response.Values[0]), nil
}

func (s *Sheet) Rows(ctx context.Context) ([][]string, error) {
	response, err := s.get(ctx, "read rows", s.area(""))
	if err != nil {
		return nil, err
	}

	rows := [][]string{}
	for _, row := range response.Values {
		rows = append(rows, toStrings(row))
	}

	return rows, nil
}

func (s *Sheet) InsertRow(ctx context.Context, row int, values []any, mode ledger.ValueInput) error {
	insert := &sheets.Request{
		InsertDimension: &sheets.InsertDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:    s.sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(row - 1),
				EndIndex:   int64(row),
			},
			InheritFromBefore: false,
		},
	}

	if err := s.batch(ctx, "insert row", insert); err != nil {
		return err
	}

	rq := sheets.ValueRange{
		Values: [][]any{values},
	}

	if _, err := s.google.Spreadsheets.Values.Update(s.spreadsheetID, s.area(fmt.Sprintf("A%d", row)), &rq).
		ValueInputOption(string(mode)).
		Context(ctx).
		Do(); err != nil {
		return ledger.NewStoreError("insert row", err)
	}

	return nil
}

func (s *Sheet) AppendRow(ctx context.Context, values []any, mode ledger.ValueInput) error {
	return s.append(ctx, "append row", [][]any{values}, mode)
}

func (s *Sheet) AppendRows(ctx context.Context, rows [][]any, mode ledger.ValueInput) error {
	if len(rows) == 0 {
		return nil
	}

	return s.append(ctx, "append rows", rows, mode)
}

func (s *Sheet) UpdateRows(ctx context.Context, row int, rows [][]any, mode ledger.ValueInput) error {
	if len(rows) == 0 {
		return nil
	}

	properties, err := s.properties(ctx)
	if err != nil {
		return err
	}

	if need := int64(row - 1 + len(rows)); properties.GridProperties != nil && need > properties.GridProperties.RowCount {
		grow := &sheets.Request{
			AppendDimension: &sheets.AppendDimensionRequest{
				SheetId:   s.sheetID,
				Dimension: "ROWS",
				Length:    need - properties.GridProperties.RowCount,
			},
		}

		if err := s.batch(ctx, "update rows", grow); err != nil {
			return err
		}
	}

	rq := sheets.ValueRange{
		Values: rows,
	}

	if _, err := s.google.Spreadsheets.Values.Update(s.spreadsheetID, s.area(fmt.Sprintf("A%d", row)), &rq).
		ValueInputOption(string(mode)).
		Context(ctx).
		Do(); err != nil {
		return ledger.NewStoreError("update rows", err)
	}

	return nil
}

func (s *Sheet) DeleteRows(ctx context.Context, from, to int) error {
	rq := &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:    s.sheetID,
				Dimension:  "ROWS",
				StartIndex: int64(from - 1),
				EndIndex:   int64(to),
			},
		},
	}

	return s.batch(ctx, "delete rows", rq)
}

func (s *Sheet) Resize(ctx context.Context, rows int) error {
	rq := &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId: s.sheetID,
				GridProperties: &sheets.GridProperties{
					RowCount: int64(rows),
				},
			},
			Fields: "gridProperties.rowCount",
		},
	}

	return s.batch(ctx, "resize", rq)
}

// Format sets the bold emphasis of rows 'from' to 'to' (or to the last row if 'to' is 0).
// Rows that already have the requested emphasis are left untouched so that the Drive
// revision only changes when the formatting does.
func (s *Sheet) Format(ctx context.Context, from, to int, bold bool) error {
	if ok, err := s.emphasised(ctx, from, to, bold); err != nil {
		log.Debugf("unable to read ledger formatting (%v)", err)
	} else if ok {
		return nil
	}

	area := sheets.GridRange{
		SheetId:       s.sheetID,
		StartRowIndex: int64(from - 1),
	}

	if to > 0 {
		area.EndRowIndex = int64(to)
	}

	rq := &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &area,
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat: &sheets.TextFormat{
						Bold:            bold,
						ForceSendFields: []string{"Bold"},
					},
				},
			},
			Fields: "userEnteredFormat.textFormat.bold",
		},
	}

	return s.batch(ctx, "format", rq)
}

// emphasised returns true if every cell in the rows already has the requested bold
// emphasis. A range without any cells counts as not bold.
func (s *Sheet) emphasised(ctx context.Context, from, to int, bold bool) (bool, error) {
	last := string(rune('A' + ledger.ColumnAuthor))
	a1 := fmt.Sprintf("A%v:%v", from, last)
	if to > 0 {
		a1 = fmt.Sprintf("A%v:%v%v", from, last, to)
	}

	var spreadsheet *sheets.Spreadsheet

	err := retry(ctx, func() (err error) {
		spreadsheet, err = s.google.Spreadsheets.Get(s.spreadsheetID).
			Ranges(s.area(a1)).
			IncludeGridData(true).
			Fields("sheets(data(rowData(values(userEnteredFormat(textFormat(bold))))))").
			Context(ctx).
			Do()
		return
	})

	if err != nil {
		return false, ledger.NewStoreError("read format", err)
	}

	cells := 0
	for _, sheet := range spreadsheet.Sheets {
		for _, data := range sheet.Data {
			for _, row := range data.RowData {
				for _, cell := range row.Values {
					cells++
					if isBold(cell) != bold {
						return false, nil
					}
				}
			}
		}
	}

	return cells > 0 || !bold, nil
}

func isBold(cell *sheets.CellData) bool {
	return cell != nil && cell.UserEnteredFormat != nil && cell.UserEnteredFormat.TextFormat != nil && cell.UserEnteredFormat.TextFormat.Bold
}

// Revision returns the Drive file version of the spreadsheet, which increases with
// every change to the file.
func (s *Sheet) Revision(ctx context.Context) (string, error) {
	if s.drive == nil {
		return "", nil
	}

	var file *drive.File

	err := retry(ctx, func() (err error) {
		file, err = s.drive.Files.Get(s.spreadsheetID).Fields("version").Context(ctx).Do()
		return
	})

	if err != nil {
		return "", ledger.NewStoreError("revision", err)
	}

	return strconv.FormatInt(file.Version, 10), nil
}

func (s *Sheet) get(ctx context.Context, op string, area string) (*sheets.ValueRange, error) {
	var response *sheets.ValueRange

	err := retry(ctx, func() (err error) {
		response, err = s.google.Spreadsheets.Values.Get(s.spreadsheetID, area).Context(ctx).Do()
		return
	})

	if err != nil {
		return nil, ledger.NewStoreError(op, err)
	}

	return response, nil
}

func (s *Sheet) append(ctx context.Context, op string, rows [][]any, mode ledger.ValueInput) error {
	rq := sheets.ValueRange{
		Values: rows,
	}

	if _, err := s.google.Spreadsheets.Values.Append(s.spreadsheetID, s.area("A1"), &rq).
		ValueInputOption(string(mode)).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do(); err != nil {
		return ledger.NewStoreError(op, err)
	}

	return nil
}

func (s *Sheet) batch(ctx context.Context, op string, requests ...*sheets.Request) error {
	rq := sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	if _, err := s.google.Spreadsheets.BatchUpdate(s.spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return ledger.NewStoreError(op, err)
	}

	return nil
}

func (s *Sheet) properties(ctx context.Context) (*sheets.SheetProperties, error) {
	var spreadsheet *sheets.Spreadsheet

	err := retry(ctx, func() (err error) {
		spreadsheet, err = s.google.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		return
	})

	if err != nil {
		return nil, ledger.NewStoreError("read sheet properties", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.SheetId == s.sheetID {
			return sheet.Properties, nil
		}
	}

	return nil, ledger.NewStoreError("read sheet properties", fmt.Errorf("worksheet %q no longer exists", s.title))
}

// area returns an A1 notation range on the worksheet. A blank range is the whole sheet.
func (s *Sheet) area(a1 string) string {
	title := fmt.Sprintf("'%s'", strings.ReplaceAll(s.title, "'", "''"))
	if a1 == "" {
		return title
	}

	return fmt.Sprintf("%s!%s", title, a1)
}

func getSheet(spreadsheet *sheets.Spreadsheet, name string) (*sheets.Sheet, error) {
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties == nil {
			continue
		}

		if strings.TrimSpace(name) == "" {
			return sheet, nil
		}

		if strings.EqualFold(strings.TrimSpace(sheet.Properties.Title), strings.TrimSpace(name)) {
			return sheet, nil
		}
	}

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("spreadsheet has no worksheets")
	}

	return nil, fmt.Errorf("unable to identify worksheet '%s'", name)
}

func toStrings(row []any) []string {
	record := make([]string, len(row))
	for i, v := range row {
		record[i] = fmt.Sprintf("%v", v)
	}

	return record
}
