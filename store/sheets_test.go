package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/cgim/ledger-sheets/ledger"
)

const spreadsheet = `{
  "spreadsheetId": "abc",
  "sheets": [
    { "properties": { "sheetId": 0, "title": "Summary", "gridProperties": { "rowCount": 100 } } },
    { "properties": { "sheetId": 7, "title": "Ledger", "gridProperties": { "rowCount": 2 } } }
  ]
}`

type request struct {
	method string
	path   string
	query  string
	body   string
}

type fake struct {
	sync.Mutex
	requests []request
	failures int
	values   string
	formats  string
}

func (f *fake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.Lock()
	defer f.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.requests = append(f.requests, request{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.RawQuery,
		body:   string(body),
	})

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/v4/spreadsheets/missing":
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found."}}`))

	case r.URL.Path == "/v4/spreadsheets/abc" && strings.Contains(r.URL.RawQuery, "includeGridData=true") && f.formats != "":
		w.Write([]byte(f.formats))

	case r.URL.Path == "/v4/spreadsheets/abc":
		w.Write([]byte(spreadsheet))

	case strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/abc/values/") && r.Method == http.MethodGet:
		if f.failures > 0 {
			f.failures--
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"code":503,"message":"The service is currently unavailable."}}`))
			return
		}

		w.Write([]byte(f.values))

	case r.URL.Path == "/drive/v3/files/abc":
		w.Write([]byte(`{"version":"42"}`))

	default:
		w.Write([]byte(`{}`))
	}
}

func (f *fake) mutations() []request {
	f.Lock()
	defer f.Unlock()

	list := []request{}
	for _, rq := range f.requests {
		if rq.method != http.MethodGet {
			list = append(list, rq)
		}
	}

	return list
}

func setup(t *testing.T, f *fake, worksheet string) *Sheet {
	t.Helper()

	newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	ctx := context.Background()

	google, err := sheets.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	gdrive, err := drive.NewService(ctx, option.WithEndpoint(srv.URL+"/drive/v3/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	s, err := open(ctx, google, gdrive, "abc", worksheet)
	require.NoError(t, err)

	return s
}

func TestOpen(t *testing.T) {
	s := setup(t, &fake{}, "ledger")

	assert.Equal(t, "Ledger", s.Title())
	assert.Equal(t, int64(7), s.sheetID)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/edit#gid=7", s.URL())
}

func TestOpenDefaultsToFirstWorksheet(t *testing.T) {
	s := setup(t, &fake{}, "")

	assert.Equal(t, "Summary", s.Title())
}

func TestOpenWithInvalidSpreadsheet(t *testing.T) {
	srv := httptest.NewServer(&fake{})
	defer srv.Close()

	ctx := context.Background()
	google, err := sheets.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	_, err = open(ctx, google, nil, "missing", "")
	assert.ErrorIs(t, err, ledger.ErrLedgerAccess)

	_, err = open(ctx, google, nil, "abc", "Archive")
	assert.ErrorIs(t, err, ledger.ErrLedgerAccess)
}

func TestRow(t *testing.T) {
	f := fake{values: `{"range":"Ledger!A1:E1","values":[["Date","Category","Description","Summary","Author"]]}`}
	s := setup(t, &f, "Ledger")

	row, err := s.Row(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Category", "Description", "Summary", "Author"}, row)
	assert.Equal(t, "/v4/spreadsheets/abc/values/'Ledger'!1:1", f.requests[len(f.requests)-1].path)
}

func TestRowRetriesTransientErrors(t *testing.T) {
	f := fake{
		failures: 2,
		values:   `{"values":[["05/03/2024","X","did work","05/03 - did work","A"]]}`,
	}
	s := setup(t, &f, "Ledger")

	row, err := s.Row(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"05/03/2024", "X", "did work", "05/03 - did work", "A"}, row)
}

func TestRowsWithEmptySheet(t *testing.T) {
	f := fake{values: `{"range":"Ledger!A1:Z1000"}`}
	s := setup(t, &f, "Ledger")

	rows, err := s.Rows(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAppendRow(t *testing.T) {
	f := fake{}
	s := setup(t, &f, "Ledger")

	err := s.AppendRow(context.Background(), []any{"05/03/2024", "X", "did work", "05/03 - did work", "A"}, ledger.UserEntered)
	require.NoError(t, err)

	mutations := f.mutations()
	require.Len(t, mutations, 1)

	rq := mutations[0]
	assert.Equal(t, "/v4/spreadsheets/abc/values/'Ledger'!A1:append", rq.path)
	assert.Contains(t, rq.query, "valueInputOption=USER_ENTERED")
	assert.Contains(t, rq.query, "insertDataOption=INSERT_ROWS")

	var body sheets.ValueRange
	require.NoError(t, json.Unmarshal([]byte(rq.body), &body))
	assert.Equal(t, [][]any{{"05/03/2024", "X", "did work", "05/03 - did work", "A"}}, body.Values)
}

func TestFormatClearsBold(t *testing.T) {
	f := fake{
		formats: `{"sheets":[{"data":[{"rowData":[{"values":[{"userEnteredFormat":{"textFormat":{"bold":true}}},{}]}]}]}]}`,
	}
	s := setup(t, &f, "Ledger")

	require.NoError(t, s.Format(context.Background(), 2, 0, false))

	mutations := f.mutations()
	require.Len(t, mutations, 1)
	assert.Equal(t, "/v4/spreadsheets/abc:batchUpdate", mutations[0].path)
	assert.Contains(t, mutations[0].body, `"bold":false`)
	assert.Contains(t, mutations[0].body, `"startRowIndex":1`)
	assert.NotContains(t, mutations[0].body, `endRowIndex`)
}

func TestFormatEmphasisesUnformattedHeader(t *testing.T) {
	f := fake{}
	s := setup(t, &f, "Ledger")

	require.NoError(t, s.Format(context.Background(), 1, 1, true))

	mutations := f.mutations()
	require.Len(t, mutations, 1)
	assert.Contains(t, mutations[0].body, `"bold":true`)
	assert.Contains(t, mutations[0].body, `"endRowIndex":1`)
}

func TestFormatSkipsRowsWithRequestedEmphasis(t *testing.T) {
	tests := []struct {
		name    string
		formats string
		from    int
		to      int
		bold    bool
	}{
		{
			name:    "bold header",
			formats: `{"sheets":[{"data":[{"rowData":[{"values":[{"userEnteredFormat":{"textFormat":{"bold":true}}},{"userEnteredFormat":{"textFormat":{"bold":true}}}]}]}]}]}`,
			from:    1,
			to:      1,
			bold:    true,
		},
		{
			name:    "plain data rows",
			formats: `{"sheets":[{"data":[{"rowData":[{"values":[{"userEnteredFormat":{"textFormat":{}}},{}]},{"values":[{}]}]}]}]}`,
			from:    2,
			to:      0,
			bold:    false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := fake{formats: test.formats}
			s := setup(t, &f, "Ledger")

			require.NoError(t, s.Format(context.Background(), test.from, test.to, test.bold))
			assert.Empty(t, f.mutations())
		})
	}
}

func TestUpdateRowsGrowsSheet(t *testing.T) {
	f := fake{}
	s := setup(t, &f, "Ledger")

	rows := [][]any{
		{"05/03/2024", "X", "did work", "05/03 - did work", "A"},
		{"06/03/2024", "Y", "more work", "06/03 - more work", "B"},
		{"07/03/2024", "Y", "even more", "07/03 - even more", "B"},
	}

	require.NoError(t, s.UpdateRows(context.Background(), 2, rows, ledger.UserEntered))

	mutations := f.mutations()
	require.Len(t, mutations, 2)

	assert.Equal(t, "/v4/spreadsheets/abc:batchUpdate", mutations[0].path)
	assert.Contains(t, mutations[0].body, `"appendDimension"`)
	assert.Contains(t, mutations[0].body, `"length":2`)

	assert.Equal(t, http.MethodPut, mutations[1].method)
	assert.Equal(t, "/v4/spreadsheets/abc/values/'Ledger'!A2", mutations[1].path)
	assert.Contains(t, mutations[1].query, "valueInputOption=USER_ENTERED")
}

func TestDeleteRows(t *testing.T) {
	f := fake{}
	s := setup(t, &f, "Ledger")

	require.NoError(t, s.DeleteRows(context.Background(), 2, 2))

	mutations := f.mutations()
	require.Len(t, mutations, 1)
	assert.Contains(t, mutations[0].body, `"deleteDimension"`)
	assert.Contains(t, mutations[0].body, `"startIndex":1`)
	assert.Contains(t, mutations[0].body, `"endIndex":2`)
}

func TestRevision(t *testing.T) {
	s := setup(t, &fake{}, "Ledger")

	revision, err := s.Revision(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "42", revision)
}

func TestTransient(t *testing.T) {
	assert.False(t, transient(io.EOF))
}
