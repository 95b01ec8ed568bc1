package ledger

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateFormat  = "02/01/2006"
	ShortFormat = "02/01"
)

var dateFormats = []string{
	DateFormat,
	"2/1/2006",
	"2006-01-02",
}

// Entry is one ledger row as submitted from the form. The summary column is derived
// and never part of the input.
type Entry struct {
	Date        time.Time `validate:"required"`
	Category    string    `validate:"required"`
	Description string    `validate:"required"`
	Author      string    `validate:"required"`
}

func (e Entry) Summary() string {
	return Summarise(e.Date, e.Description)
}

// Row returns the entry as a ledger row in header column order.
func (e Entry) Row() []any {
	return []any{
		e.Date.Format(DateFormat),
		e.Category,
		e.Description,
		e.Summary(),
		e.Author,
	}
}

func Summarise(date time.Time, description string) string {
	return fmt.Sprintf("%v - %v", date.Format(ShortFormat), description)
}

// ParseDate accepts DD/MM/YYYY, D/M/YYYY and YYYY-MM-DD dates.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, format := range dateFormats {
		if date, err := time.ParseInLocation(format, v, time.Local); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date '%v' - expected DD/MM/YYYY", s)
}
