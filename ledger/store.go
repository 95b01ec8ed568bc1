package ledger

import (
	"context"
)

// ValueInput is the value interpretation mode for mutating store calls.
type ValueInput string

const (
	Raw         ValueInput = "RAW"
	UserEntered ValueInput = "USER_ENTERED"
)

// Store is the row-oriented Sheet Store the ledger is kept in. Row numbers are 1-based
// and row 1 is the header.
type Store interface {
	Row(ctx context.Context, row int) ([]string, error)
	Rows(ctx context.Context) ([][]string, error)
	InsertRow(ctx context.Context, row int, values []any, mode ValueInput) error
	AppendRow(ctx context.Context, values []any, mode ValueInput) error
	AppendRows(ctx context.Context, rows [][]any, mode ValueInput) error

	// UpdateRows overwrites rows starting at 'row', growing the sheet if necessary.
	UpdateRows(ctx context.Context, row int, rows [][]any, mode ValueInput) error

	// DeleteRows deletes rows 'from' to 'to' inclusive.
	DeleteRows(ctx context.Context, from, to int) error
	Resize(ctx context.Context, rows int) error

	// Format sets the bold text emphasis for rows 'from' to 'to' inclusive. A 'to' of 0
	// extends the range to the end of the sheet.
	Format(ctx context.Context, from, to int, bold bool) error

	// Revision returns an opaque identifier for the current ledger content, or "" if
	// the store cannot track revisions.
	Revision(ctx context.Context) (string, error)
}
