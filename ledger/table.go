package ledger

import (
	"fmt"
	"strings"
)

// Table is the ledger content after the header row, with each record ordered as
// the header.
type Table struct {
	Header  []string
	Records [][]string
}

// Record returns record i keyed by header column name.
func (t Table) Record(i int) map[string]string {
	record := map[string]string{}
	for j, h := range t.Header {
		if j < len(t.Records[i]) {
			record[h] = t.Records[i][j]
		} else {
			record[h] = ""
		}
	}

	return record
}

// makeTable builds a Table from raw sheet rows. The first row is the sheet header and
// columns are matched to 'header' by name, ignoring case and spaces.
func makeTable(rows [][]string, header []string) (*Table, error) {
	if len(rows) == 0 {
		return &Table{Header: header, Records: [][]string{}}, nil
	}

	index, err := buildIndex(rows[0], header)
	if err != nil {
		return nil, err
	}

	records := [][]string{}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}

		record := make([]string, len(header))
		for i, ix := range index {
			if ix < len(row) {
				record[i] = clean(row[ix])
			}
		}

		records = append(records, record)
	}

	return &Table{
		Header:  header,
		Records: records,
	}, nil
}

// reorder returns the table records in 'header' order. A table without a header is
// assumed to already be in header order.
func reorder(table *Table, header []string) ([][]string, error) {
	if table == nil {
		return [][]string{}, nil
	}

	if table.Header == nil {
		records := [][]string{}
		for _, r := range table.Records {
			record := make([]string, len(header))
			copy(record, r)
			records = append(records, record)
		}

		return records, nil
	}

	index, err := buildIndex(table.Header, header)
	if err != nil {
		return nil, err
	}

	records := [][]string{}
	for _, r := range table.Records {
		record := make([]string, len(header))
		for i, ix := range index {
			if ix < len(r) {
				record[i] = r[ix]
			}
		}

		records = append(records, record)
	}

	return records, nil
}

// buildIndex maps each 'header' column to its position in 'columns'.
func buildIndex(columns []string, header []string) ([]int, error) {
	positions := map[string]int{}
	for i, v := range columns {
		k := normalise(v)
		if k == "" {
			continue
		}

		if _, ok := positions[k]; ok {
			return nil, fmt.Errorf("duplicate column name '%s'", v)
		}

		positions[k] = i
	}

	index := make([]int, len(header))
	for i, h := range header {
		ix, ok := positions[normalise(h)]
		if !ok {
			return nil, fmt.Errorf("missing '%s' column", h)
		}

		index[i] = ix
	}

	return index, nil
}

func equal(row []string, header []string) bool {
	if len(row) != len(header) {
		return false
	}

	for i := range header {
		if row[i] != header[i] {
			return false
		}
	}

	return true
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}

func clean(v string) string {
	return strings.TrimSpace(v)
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}
