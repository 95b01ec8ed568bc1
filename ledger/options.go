package ledger

import (
	"fmt"
	"slices"
	"strings"
)

const (
	ColumnDate = iota
	ColumnCategory
	ColumnDescription
	ColumnSummary
	ColumnAuthor
	columns
)

// Options holds the fixed enumerations of a ledger: the header labels, the registered
// authors (preceded in the form by the placeholder) and the delivery categories.
type Options struct {
	Header            []string
	Placeholder       string
	Authors           []string
	Categories        []string
	ClearDataEmphasis bool
}

func (o Options) Validate() error {
	if len(o.Header) != columns {
		return fmt.Errorf("ledger header must have %v columns, got %v", columns, len(o.Header))
	}

	for i, h := range o.Header {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("ledger header column %v is blank", i+1)
		}

		if slices.Contains(o.Header[:i], h) {
			return fmt.Errorf("duplicate ledger header column '%v'", h)
		}
	}

	if strings.TrimSpace(o.Placeholder) == "" {
		return fmt.Errorf("missing author placeholder")
	}

	if len(o.Authors) == 0 {
		return fmt.Errorf("no authors configured")
	}

	if slices.Contains(o.Authors, o.Placeholder) {
		return fmt.Errorf("author placeholder '%v' may not also be an author", o.Placeholder)
	}

	if len(o.Categories) == 0 {
		return fmt.Errorf("no categories configured")
	}

	return nil
}

// Names returns the author select options, placeholder first.
func (o Options) Names() []string {
	return append([]string{o.Placeholder}, o.Authors...)
}
