// Package ledger keeps a delivery ledger held in a remote sheet consistent with its
// fixed header, appends submitted entries and reconciles the sheet with edited tables.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cgim/ledger-sheets/log"
)

// BackupFunc receives a snapshot of every ledger row (header included) before a
// reconcile overwrites it.
type BackupFunc func(ctx context.Context, rows [][]string) error

type Ledger struct {
	store    Store
	options  Options
	validate *validator.Validate
	backup   BackupFunc
}

func New(store Store, options Options) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("missing ledger store")
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	return &Ledger{
		store:    store,
		options:  options,
		validate: validator.New(),
	}, nil
}

func (l *Ledger) Options() Options {
	return l.options
}

func (l *Ledger) SetBackup(f BackupFunc) {
	l.backup = f
}

// EnsureHeader restores the header to row 1, emphasises it and removes any duplicate
// headers immediately following it. Formatting failures are logged and otherwise ignored.
func (l *Ledger) EnsureHeader(ctx context.Context) error {
	header := l.options.Header

	row, err := l.store.Row(ctx, 1)
	if err != nil {
		return err
	}

	if !equal(row, header) {
		log.Infof("ledger header missing or mismatched (%q), inserting header", row)

		if err := l.store.InsertRow(ctx, 1, values(header), UserEntered); err != nil {
			return err
		}
	}

	if err := l.store.Format(ctx, 1, 1, true); err != nil {
		log.Warnf("unable to emphasise ledger header (%v)", err)
	}

	if l.options.ClearDataEmphasis {
		if err := l.store.Format(ctx, 2, 0, false); err != nil {
			log.Warnf("unable to clear ledger data emphasis (%v)", err)
		}
	}

	for {
		if row, err := l.store.Row(ctx, 2); err != nil {
			return err
		} else if !equal(row, header) {
			return nil
		}

		log.Infof("removing duplicate ledger header from row 2")

		if err := l.store.DeleteRows(ctx, 2, 2); err != nil {
			return err
		}
	}
}

// Submit validates an entry and appends it as a new ledger row. An invalid entry is
// rejected with a ValidationError before any store call.
func (l *Ledger) Submit(ctx context.Context, entry Entry) error {
	e, err := l.check(entry)
	if err != nil {
		return err
	}

	if err := l.store.AppendRow(ctx, e.Row(), UserEntered); err != nil {
		return err
	}

	log.Infof("appended ledger entry %v  %v  %q", e.Date.Format(DateFormat), e.Author, e.Category)

	return nil
}

// FetchAll returns every data row of the ledger. A ledger with only a header (or no
// rows at all) returns an empty table.
func (l *Ledger) FetchAll(ctx context.Context) (*Table, error) {
	rows, err := l.store.Rows(ctx)
	if err != nil {
		return nil, err
	}

	table, err := makeTable(rows, l.options.Header)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger layout (%w)", err)
	}

	return table, nil
}

func (l *Ledger) Revision(ctx context.Context) (string, error) {
	return l.store.Revision(ctx)
}

// Reconcile replaces the ledger data rows with the edited table. The edited content is
// written over the existing rows before the sheet is shrunk, so a failure at any step
// never leaves the ledger truncated. A non-empty revision is compared with the current
// ledger revision and a mismatch fails with ErrConflict.
func (l *Ledger) Reconcile(ctx context.Context, edited *Table, revision string) error {
	rows, err := l.prepare(edited)
	if err != nil {
		return err
	}

	if revision != "" {
		if current, err := l.store.Revision(ctx); err != nil {
			return err
		} else if current != "" && current != revision {
			return fmt.Errorf("%w (expected revision %v, current revision %v)", ErrConflict, revision, current)
		}
	}

	if err := l.EnsureHeader(ctx); err != nil {
		return err
	}

	snapshot, err := l.store.Rows(ctx)
	if err != nil {
		return err
	}

	if l.backup != nil {
		if err := l.backup(ctx, snapshot); err != nil {
			return fmt.Errorf("ledger backup failed, ledger not modified (%w)", err)
		}
	}

	existing := max(len(snapshot)-1, 0)
	padded := slices.Clone(rows)
	for len(padded) < existing {
		padded = append(padded, values(make([]string, columns)))
	}

	if len(padded) > 0 {
		if err := l.store.UpdateRows(ctx, 2, padded, UserEntered); err != nil {
			return err
		}
	}

	if err := l.store.Resize(ctx, 1+len(rows)); err != nil {
		log.Warnf("unable to remove blank rows after ledger update (%v)", err)
	}

	log.Infof("reconciled ledger: %v rows replaced with %v rows", existing, len(rows))

	return nil
}

// check validates an entry against the closed author and category lists and returns
// the normalised entry.
func (l *Ledger) check(entry Entry) (*Entry, error) {
	e := Entry{
		Date:        entry.Date,
		Category:    strings.TrimSpace(entry.Category),
		Description: strings.TrimSpace(entry.Description),
		Author:      strings.TrimSpace(entry.Author),
	}

	if e.Author == l.options.Placeholder {
		return nil, &ValidationError{Field: "author", Message: "select the name of the person filling in the form"}
	}

	if err := l.validate.Struct(e); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return nil, validationError(errs[0])
		}

		return nil, &ValidationError{Field: "entry", Message: err.Error()}
	}

	if !slices.Contains(l.options.Authors, e.Author) {
		return nil, &ValidationError{Field: "author", Message: fmt.Sprintf("'%v' is not a registered name", e.Author)}
	}

	if !slices.Contains(l.options.Categories, e.Category) {
		return nil, &ValidationError{Field: "category", Message: fmt.Sprintf("'%v' is not a delivery type", e.Category)}
	}

	return &e, nil
}

// prepare validates the edited table rows, drops blank rows and recomputes the summary
// column. Authors are not checked against the current names so that rows entered by
// former members are kept.
func (l *Ledger) prepare(edited *Table) ([][]any, error) {
	records, err := reorder(edited, l.options.Header)
	if err != nil {
		return nil, &ValidationError{Field: "table", Message: err.Error()}
	}

	rows := [][]any{}
	for i, record := range records {
		if blank(record) {
			continue
		}

		date, err := ParseDate(record[ColumnDate])
		if err != nil {
			return nil, &ValidationError{Field: fmt.Sprintf("row %v", i+1), Message: err.Error()}
		}

		description := clean(record[ColumnDescription])
		if description == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("row %v", i+1), Message: "describe the work done"}
		}

		author := clean(record[ColumnAuthor])
		if author == "" || author == l.options.Placeholder {
			return nil, &ValidationError{Field: fmt.Sprintf("row %v", i+1), Message: "select the name of the person filling in the form"}
		}

		e := Entry{
			Date:        date,
			Category:    clean(record[ColumnCategory]),
			Description: description,
			Author:      author,
		}

		rows = append(rows, e.Row())
	}

	return rows, nil
}

func validationError(fe validator.FieldError) *ValidationError {
	field := strings.ToLower(fe.Field())

	switch field {
	case "date":
		return &ValidationError{Field: field, Message: "select the date of the activity"}
	case "category":
		return &ValidationError{Field: field, Message: "select the delivery type"}
	case "description":
		return &ValidationError{Field: field, Message: "describe the work done"}
	case "author":
		return &ValidationError{Field: field, Message: "select the name of the person filling in the form"}
	default:
		return &ValidationError{Field: field, Message: fe.Tag()}
	}
}

func values(row []string) []any {
	v := make([]any, len(row))
	for i := range row {
		v[i] = row[i]
	}

	return v
}

// Today returns the current local date at midnight.
func Today() time.Time {
	now := time.Now()

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}
