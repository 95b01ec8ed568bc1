package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgim/ledger-sheets/ledger"
	"github.com/cgim/ledger-sheets/store"
)

var header = []string{"Date", "Category", "Description", "Summary", "Author"}

var options = ledger.Options{
	Header:            header,
	Placeholder:       "select a name",
	Authors:           []string{"A", "B"},
	Categories:        []string{"X", "Y"},
	ClearDataEmphasis: true,
}

func newLedger(t *testing.T, m *store.Memory) *ledger.Ledger {
	t.Helper()

	l, err := ledger.New(m, options)
	require.NoError(t, err)

	return l
}

func TestEnsureHeader(t *testing.T) {
	row := []string{"05/03/2024", "X", "did work", "05/03 - did work", "A"}

	tests := []struct {
		name     string
		rows     [][]string
		expected [][]string
	}{
		{
			name:     "absent",
			rows:     nil,
			expected: [][]string{header},
		},
		{
			name:     "mismatched",
			rows:     [][]string{{"Data", "Entrega"}, row},
			expected: [][]string{header, {"Data", "Entrega"}, row},
		},
		{
			name:     "data in row 1",
			rows:     [][]string{row},
			expected: [][]string{header, row},
		},
		{
			name:     "matching",
			rows:     [][]string{header, row},
			expected: [][]string{header, row},
		},
		{
			name:     "duplicated",
			rows:     [][]string{header, header, row},
			expected: [][]string{header, row},
		},
		{
			name:     "stacked duplicates",
			rows:     [][]string{header, header, header, row},
			expected: [][]string{header, row},
		},
		{
			name:     "header only duplicates",
			rows:     [][]string{header, header, header},
			expected: [][]string{header},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := store.NewMemory(test.rows...)
			l := newLedger(t, m)

			require.NoError(t, l.EnsureHeader(context.Background()))

			snapshot := m.Snapshot()
			assert.Equal(t, test.expected, snapshot)
			assert.Equal(t, header, snapshot[0])
			if len(snapshot) > 1 {
				assert.NotEqual(t, header, snapshot[1])
			}

			assert.True(t, m.Bold(1), "header row not emphasised")
			assert.False(t, m.Bold(2), "data row emphasised")
		})
	}
}

func TestEnsureHeaderIsIdempotent(t *testing.T) {
	row := []string{"05/03/2024", "X", "did work", "05/03 - did work", "A"}

	for _, rows := range [][][]string{
		{{"Data"}, header, row},
		{header, header, header, row},
	} {
		m := store.NewMemory(rows...)
		l := newLedger(t, m)

		require.NoError(t, l.EnsureHeader(context.Background()))
		once := m.Snapshot()

		require.NoError(t, l.EnsureHeader(context.Background()))
		assert.Equal(t, once, m.Snapshot())
	}
}

func TestEnsureHeaderDoesNotChangeRevisionOfFormattedLedger(t *testing.T) {
	m := store.NewMemory(header, []string{"05/03/2024", "X", "did work", "05/03 - did work", "A"})
	l := newLedger(t, m)

	require.NoError(t, l.EnsureHeader(context.Background()))

	revision, err := l.Revision(context.Background())
	require.NoError(t, err)

	require.NoError(t, l.EnsureHeader(context.Background()))

	current, err := l.Revision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, revision, current)
}

func TestEnsureHeaderReportsStoreErrors(t *testing.T) {
	m := store.NewMemory([]string{"Data"})
	m.Fail["insert"] = errors.New("quota exceeded")

	err := newLedger(t, m).EnsureHeader(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrStoreOperation)
}

func TestEnsureHeaderIgnoresFormattingErrors(t *testing.T) {
	m := store.NewMemory()
	m.Fail["format"] = errors.New("format not supported")

	require.NoError(t, newLedger(t, m).EnsureHeader(context.Background()))
	assert.Equal(t, [][]string{header}, m.Snapshot())
}

func TestSubmit(t *testing.T) {
	m := store.NewMemory(header)
	l := newLedger(t, m)

	entry := ledger.Entry{
		Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local),
		Category:    "X",
		Description: "did work",
		Author:      "A",
	}

	require.NoError(t, l.Submit(context.Background(), entry))

	assert.Equal(t, []string{"append"}, m.Calls)
	assert.Equal(t, [][]string{
		header,
		{"05/03/2024", "X", "did work", "05/03 - did work", "A"},
	}, m.Snapshot())
}

func TestSubmitDoesNotAlterExistingRows(t *testing.T) {
	existing := []string{"01/02/2024", "Y", "earlier", "01/02 - earlier", "B"}
	m := store.NewMemory(header, existing)
	l := newLedger(t, m)

	entry := ledger.Entry{
		Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local),
		Category:    "X",
		Description: "did work",
		Author:      "A",
	}

	require.NoError(t, l.Submit(context.Background(), entry))
	require.NoError(t, l.Submit(context.Background(), entry))

	snapshot := m.Snapshot()
	require.Len(t, snapshot, 4)
	assert.Equal(t, existing, snapshot[1])
	assert.Equal(t, snapshot[2], snapshot[3])
}

func TestSubmitWithInvalidEntry(t *testing.T) {
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name  string
		entry ledger.Entry
		field string
	}{
		{"placeholder author", ledger.Entry{Date: date, Category: "X", Description: "did work", Author: "select a name"}, "author"},
		{"empty description", ledger.Entry{Date: date, Category: "X", Description: "", Author: "A"}, "description"},
		{"blank description", ledger.Entry{Date: date, Category: "X", Description: "   ", Author: "A"}, "description"},
		{"missing date", ledger.Entry{Category: "X", Description: "did work", Author: "A"}, "date"},
		{"unknown author", ledger.Entry{Date: date, Category: "X", Description: "did work", Author: "Z"}, "author"},
		{"unknown category", ledger.Entry{Date: date, Category: "Q", Description: "did work", Author: "A"}, "category"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := store.NewMemory(header)
			l := newLedger(t, m)

			err := l.Submit(context.Background(), test.entry)

			require.Error(t, err)
			assert.ErrorIs(t, err, ledger.ErrValidation)

			var v *ledger.ValidationError
			require.True(t, errors.As(err, &v))
			assert.Equal(t, test.field, v.Field)
			assert.Empty(t, m.Calls, "expected no store calls")
		})
	}
}

func TestFetchAll(t *testing.T) {
	m := store.NewMemory(
		[]string{"Author", "Date", "Category", "Description", "Summary"},
		[]string{"A", "05/03/2024", "X", "did work", "05/03 - did work"},
		[]string{},
		[]string{"B", "06/03/2024", "Y", " more work ", "06/03 - more work"},
		[]string{"B", "07/03/2024"},
	)

	table, err := newLedger(t, m).FetchAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &ledger.Table{
		Header: header,
		Records: [][]string{
			{"05/03/2024", "X", "did work", "05/03 - did work", "A"},
			{"06/03/2024", "Y", "more work", "06/03 - more work", "B"},
			{"07/03/2024", "", "", "", "B"},
		},
	}, table)

	assert.Equal(t, map[string]string{
		"Date":        "05/03/2024",
		"Category":    "X",
		"Description": "did work",
		"Summary":     "05/03 - did work",
		"Author":      "A",
	}, table.Record(0))
}

func TestFetchAllWithHeaderOnly(t *testing.T) {
	for _, m := range []*store.Memory{store.NewMemory(header), store.NewMemory()} {
		table, err := newLedger(t, m).FetchAll(context.Background())

		require.NoError(t, err)
		require.NotNil(t, table)
		assert.Empty(t, table.Records)
	}
}

func TestFetchAllWithDuplicatedColumn(t *testing.T) {
	m := store.NewMemory([]string{"Date", "Category", "Description", "Summary", "Author", "date"})

	_, err := newLedger(t, m).FetchAll(context.Background())

	assert.Error(t, err)
}

func TestFetchAllWithStoreError(t *testing.T) {
	m := store.NewMemory(header)
	m.Fail["rows"] = errors.New("network unreachable")

	_, err := newLedger(t, m).FetchAll(context.Background())

	assert.ErrorIs(t, err, ledger.ErrStoreOperation)
}

func TestReconcileRoundTrip(t *testing.T) {
	m := store.NewMemory(
		header,
		[]string{"05/03/2024", "X", "did work", "05/03 - did work", "A"},
		[]string{"06/03/2024", "Y", "more work", "06/03 - more work", "B"},
	)
	l := newLedger(t, m)
	before := m.Snapshot()

	table, err := l.FetchAll(context.Background())
	require.NoError(t, err)

	require.NoError(t, l.Reconcile(context.Background(), table, ""))
	assert.Equal(t, before, m.Snapshot())
}

func TestReconcileWithEdits(t *testing.T) {
	m := store.NewMemory(
		header,
		[]string{"05/03/2024", "X", "did work", "05/03 - did work", "A"},
		[]string{"06/03/2024", "Y", "more work", "06/03 - more work", "B"},
		[]string{"07/03/2024", "Y", "even more", "07/03 - even more", "B"},
	)
	l := newLedger(t, m)

	edited := ledger.Table{
		Header: header,
		Records: [][]string{
			{"2024-03-08", "X", "edited work", "stale summary", "A"},
			{"", "", "", "", ""},
			{"6/3/2024", "Y", "more work", "", "B"},
		},
	}

	require.NoError(t, l.Reconcile(context.Background(), &edited, ""))
	assert.Equal(t, [][]string{
		header,
		{"08/03/2024", "X", "edited work", "08/03 - edited work", "A"},
		{"06/03/2024", "Y", "more work", "06/03 - more work", "B"},
	}, m.Snapshot())
}

func TestReconcileWithEmptyTable(t *testing.T) {
	m := store.NewMemory(header, []string{"05/03/2024", "X", "did work", "05/03 - did work", "A"})
	l := newLedger(t, m)

	require.NoError(t, l.Reconcile(context.Background(), &ledger.Table{Header: header}, ""))
	assert.Equal(t, [][]string{header}, m.Snapshot())
}

func TestReconcileRestoresMissingHeader(t *testing.T) {
	row := []string{"05/03/2024", "X", "did work", "05/03 - did work", "A"}
	m := store.NewMemory(row)
	l := newLedger(t, m)

	edited := ledger.Table{Header: header, Records: [][]string{row}}

	require.NoError(t, l.Reconcile(context.Background(), &edited, ""))
	assert.Equal(t, [][]string{header, row}, m.Snapshot())
}

func TestReconcileDoesNotLoseDataOnFailedUpdate(t *testing.T) {
	m := store.NewMemory(header, []string{"05/03/2024", "X", "did work", "05/03 - did work", "A"})
	m.Fail["update"] = errors.New("backend error")
	l := newLedger(t, m)
	before := m.Snapshot()

	edited := ledger.Table{Header: header, Records: [][]string{{"06/03/2024", "Y", "other", "", "B"}}}

	err := l.Reconcile(context.Background(), &edited, "")

	assert.ErrorIs(t, err, ledger.ErrStoreOperation)
	assert.Equal(t, before, m.Snapshot())
	assert.NotContains(t, m.Calls, "resize")
}

func TestReconcileWithFailedResize(t *testing.T) {
	m := store.NewMemory(
		header,
		[]string{"05/03/2024", "X", "did work", "05/03 - did work", "A"},
		[]string{"06/03/2024", "Y", "more work", "06/03 - more work", "B"},
	)
	m.Fail["resize"] = errors.New("backend error")
	l := newLedger(t, m)

	edited := ledger.Table{Header: header, Records: [][]string{{"06/03/2024", "Y", "more work", "", "B"}}}

	require.NoError(t, l.Reconcile(context.Background(), &edited, ""))

	table, err := l.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"06/03/2024", "Y", "more work", "06/03 - more work", "B"}}, table.Records)
}

func TestReconcileWithInvalidRow(t *testing.T) {
	m := store.NewMemory(header)
	l := newLedger(t, m)

	for _, record := range [][]string{
		{"not a date", "X", "did work", "", "A"},
		{"05/03/2024", "X", "  ", "", "A"},
		{"05/03/2024", "X", "did work", "", "select a name"},
		{"05/03/2024", "X", "did work", "", " "},
		{"05/03/2024", "X", "did work", "", ""},
	} {
		m.Calls = nil

		err := l.Reconcile(context.Background(), &ledger.Table{Header: header, Records: [][]string{record}}, "")

		assert.ErrorIs(t, err, ledger.ErrValidation)
		assert.Empty(t, m.Calls)
	}
}

func TestReconcileBacksUpBeforeWriting(t *testing.T) {
	row := []string{"05/03/2024", "X", "did work", "05/03 - did work", "A"}
	m := store.NewMemory(header, row)
	l := newLedger(t, m)

	var backup [][]string
	l.SetBackup(func(ctx context.Context, rows [][]string) error {
		backup = rows
		return nil
	})

	require.NoError(t, l.Reconcile(context.Background(), &ledger.Table{Header: header}, ""))
	assert.Equal(t, [][]string{header, row}, backup)
}

func TestReconcileWithFailedBackup(t *testing.T) {
	m := store.NewMemory(header, []string{"05/03/2024", "X", "did work", "05/03 - did work", "A"})
	l := newLedger(t, m)
	before := m.Snapshot()

	l.SetBackup(func(ctx context.Context, rows [][]string) error {
		return errors.New("disk full")
	})

	err := l.Reconcile(context.Background(), &ledger.Table{Header: header}, "")

	assert.Error(t, err)
	assert.Equal(t, before, m.Snapshot())
	assert.Empty(t, m.Mutations())
}

func TestReconcileWithConflict(t *testing.T) {
	m := store.NewMemory(header)
	l := newLedger(t, m)

	revision, err := l.Revision(context.Background())
	require.NoError(t, err)

	entry := ledger.Entry{Date: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.Local), Category: "X", Description: "did work", Author: "A"}
	require.NoError(t, l.Submit(context.Background(), entry))
	before := m.Snapshot()

	err = l.Reconcile(context.Background(), &ledger.Table{Header: header}, revision)

	assert.ErrorIs(t, err, ledger.ErrConflict)
	assert.Equal(t, before, m.Snapshot())
}

func TestNewWithInvalidOptions(t *testing.T) {
	invalid := options
	invalid.Authors = []string{"A", "select a name"}

	_, err := ledger.New(store.NewMemory(), invalid)
	assert.Error(t, err)

	invalid = options
	invalid.Header = header[:4]

	_, err = ledger.New(store.NewMemory(), invalid)
	assert.Error(t, err)
}
