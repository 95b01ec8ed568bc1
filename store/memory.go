package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/cgim/ledger-sheets/ledger"
)

// Memory is an in-memory ledger.Store. Values are stored as their string form and every
// call is recorded in Calls.
type Memory struct {
	Calls []string

	// Fail makes the named operation return the associated error.
	Fail map[string]error

	rows     [][]string
	bold     map[int]bool
	revision int
	guard    sync.Mutex
}

func NewMemory(rows ...[]string) *Memory {
	m := Memory{
		Fail: map[string]error{},
		bold: map[int]bool{},
	}

	for _, row := range rows {
		m.rows = append(m.rows, append([]string{}, row...))
	}

	return &m
}

// Snapshot returns a copy of the stored rows.
func (m *Memory) Snapshot() [][]string {
	m.guard.Lock()
	defer m.guard.Unlock()

	return m.copy()
}

func (m *Memory) Bold(row int) bool {
	m.guard.Lock()
	defer m.guard.Unlock()

	return m.bold[row]
}

func (m *Memory) Row(ctx context.Context, row int) ([]string, error) {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("row"); err != nil {
		return nil, err
	}

	if row < 1 || row > len(m.rows) {
		return []string{}, nil
	}

	return trim(m.rows[row-1]), nil
}

func (m *Memory) Rows(ctx context.Context) ([][]string, error) {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("rows"); err != nil {
		return nil, err
	}

	rows := [][]string{}
	for _, row := range m.rows {
		rows = append(rows, trim(row))
	}

	// trailing blank rows are not returned by a sheet read
	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}

	return rows, nil
}

func (m *Memory) InsertRow(ctx context.Context, row int, values []any, mode ledger.ValueInput) error {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("insert"); err != nil {
		return err
	}

	if row < 1 || row > len(m.rows)+1 {
		return ledger.NewStoreError("insert", fmt.Errorf("invalid row %v", row))
	}

	rows := append([][]string{}, m.rows[:row-1]...)
	rows = append(rows, format(values))
	rows = append(rows, m.rows[row-1:]...)

	bold := map[int]bool{}
	for k, v := range m.bold {
		if k >= row {
			bold[k+1] = v
		} else {
			bold[k] = v
		}
	}

	m.rows = rows
	m.bold = bold
	m.revision++

	return nil
}

func (m *Memory) AppendRow(ctx context.Context, values []any, mode ledger.ValueInput) error {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("append"); err != nil {
		return err
	}

	m.rows = append(m.rows, format(values))
	m.revision++

	return nil
}

func (m *Memory) AppendRows(ctx context.Context, rows [][]any, mode ledger.ValueInput) error {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("append-rows"); err != nil {
		return err
	}

	for _, row := range rows {
		m.rows = append(m.rows, format(row))
	}

	m.revision++

	return nil
}

func (m *Memory) UpdateRows(ctx context.Context, row int, rows [][]any, mode ledger.ValueInput) error {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("update"); err != nil {
		return err
	}

	if row < 1 {
		return ledger.NewStoreError("update", fmt.Errorf("invalid row %v", row))
	}

	for len(m.rows) < row-1+len(rows) {
		m.rows = append(m.rows, []string{})
	}

	for i, values := range rows {
		m.rows[row-1+i] = format(values)
	}

	m.revision++

	return nil
}

func (m *Memory) DeleteRows(ctx context.Context, from, to int) error {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("delete"); err != nil {
		return err
	}

	if from < 1 || to < from || to > len(m.rows) {
		return ledger.NewStoreError("delete", fmt.Errorf("invalid row range %v:%v", from, to))
	}

	m.rows = append(m.rows[:from-1], m.rows[to:]...)

	bold := map[int]bool{}
	for k, v := range m.bold {
		switch {
		case k < from:
			bold[k] = v
		case k > to:
			bold[k-(to-from+1)] = v
		}
	}

	m.bold = bold
	m.revision++

	return nil
}

func (m *Memory) Resize(ctx context.Context, rows int) error {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("resize"); err != nil {
		return err
	}

	if rows < 1 {
		return ledger.NewStoreError("resize", fmt.Errorf("invalid row count %v", rows))
	}

	if rows < len(m.rows) {
		m.rows = m.rows[:rows]
	}

	m.revision++

	return nil
}

func (m *Memory) Format(ctx context.Context, from, to int, bold bool) error {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("format"); err != nil {
		return err
	}

	if to == 0 {
		to = len(m.rows)
	}

	changed := false
	for row := from; row <= to; row++ {
		if m.bold[row] != bold {
			m.bold[row] = bold
			changed = true
		}
	}

	if changed {
		m.revision++
	}

	return nil
}

func (m *Memory) Revision(ctx context.Context) (string, error) {
	m.guard.Lock()
	defer m.guard.Unlock()

	if err := m.call("revision"); err != nil {
		return "", err
	}

	return strconv.Itoa(m.revision), nil
}

// Mutations returns the recorded calls that modify the stored rows.
func (m *Memory) Mutations() []string {
	m.guard.Lock()
	defer m.guard.Unlock()

	list := []string{}
	for _, call := range m.Calls {
		switch call {
		case "row", "rows", "format", "revision":
		default:
			list = append(list, call)
		}
	}

	return list
}

func (m *Memory) call(op string) error {
	m.Calls = append(m.Calls, op)

	if err, ok := m.Fail[op]; ok && err != nil {
		return ledger.NewStoreError(op, err)
	}

	return nil
}

func (m *Memory) copy() [][]string {
	rows := [][]string{}
	for _, row := range m.rows {
		rows = append(rows, append([]string{}, row...))
	}

	return rows
}

func format(values []any) []string {
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = fmt.Sprintf("%v", v)
	}

	return row
}

// trim removes trailing empty cells, as a sheet read does.
func trim(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}

	return append([]string{}, row[:end]...)
}
