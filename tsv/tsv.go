// Package tsv reads and writes ledger tables as tab separated files, the format used by
// the 'get' and 'put' commands and for the backups taken before a ledger is reconciled.
package tsv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cgim/ledger-sheets/ledger"
	"github.com/cgim/ledger-sheets/log"
)

// Write writes the table header and records to a TSV file.
func Write(f io.Writer, table *ledger.Table) error {
	if table == nil || len(table.Header) == 0 {
		return fmt.Errorf("missing/invalid table header")
	}

	rows := [][]string{table.Header}
	rows = append(rows, table.Records...)

	return WriteRows(f, rows)
}

// WriteRows writes raw rows to a TSV file.
func WriteRows(f io.Writer, rows [][]string) error {
	w := csv.NewWriter(f)
	w.Comma = '\t'

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// Read reads a TSV file with a header row. Records are returned in file column order,
// short records padded to the width of the header and blank records dropped.
func Read(f io.Reader) (*ledger.Table, error) {
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("TSV file is empty")
	}

	header := []string{}
	for _, v := range records[0] {
		header = append(header, strings.TrimSpace(v))
	}

	if len(header) == 0 || blank(header) {
		return nil, fmt.Errorf("TSV file missing header")
	}

	rows := [][]string{}
	for _, record := range records[1:] {
		if blank(record) {
			continue
		}

		row := make([]string, len(header))
		for i := range row {
			if i < len(record) {
				row[i] = strings.TrimSpace(record[i])
			}
		}

		rows = append(rows, row)
	}

	return &ledger.Table{
		Header:  header,
		Records: rows,
	}, nil
}

// Save writes the table to a TSV file, via a temporary file so that an existing file is
// only replaced by a complete one.
func Save(file string, table *ledger.Table) error {
	return save(file, func(w io.Writer) error {
		return Write(w, table)
	})
}

// Backup returns a ledger backup hook that saves the snapshot to a timestamped TSV file
// in 'dir', e.g. dir/ledger-2024-03-05T093015.tsv.
func Backup(dir string) ledger.BackupFunc {
	return func(ctx context.Context, rows [][]string) error {
		file := filepath.Join(dir, time.Now().Format("ledger-2006-01-02T150405.tsv"))

		if err := save(file, func(w io.Writer) error { return WriteRows(w, rows) }); err != nil {
			return err
		}

		log.Infof("ledger backed up to %v (%v rows)", file, len(rows))

		return nil
	}
}

func save(file string, write func(io.Writer) error) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.tsv")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := write(tmp); err != nil {
		return fmt.Errorf("error creating TSV file (%w)", err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), file)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}
