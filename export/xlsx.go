// Package export renders ledger tables as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cgim/ledger-sheets/ledger"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// column widths, in header order
var widths = []float64{12, 45, 60, 60, 22}

// XLSX writes the table to 'w' as a single worksheet workbook with a bold header row.
func XLSX(w io.Writer, sheet string, table *ledger.Table) error {
	if table == nil || len(table.Header) == 0 {
		return fmt.Errorf("missing/invalid table header")
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("error creating worksheet '%v' (%w)", sheet, err)
	}

	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := setRow(f, sheet, 1, table.Header); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(table.Header), 1)
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return err
	}

	for i, record := range table.Records {
		if err := setRow(f, sheet, i+2, record); err != nil {
			return err
		}
	}

	for i := range table.Header {
		if i < len(widths) {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}

			if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}

	return f.SetSheetRow(sheet, cell, &list)
}
