package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/querydeck/internal/frame"
	"github.com/leapstack-labs/querydeck/internal/testutil"
)

func openTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := Open(context.Background(), "test-session", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func salesCSV() []byte {
	lines := []string{"id,region,amount"}
	regions := []string{"north", "south", "east", "west"}
	for i := 1; i <= 25; i++ {
		lines = append(lines, fmt.Sprintf("%d,%s,%d.5", i, regions[i%len(regions)], i*10))
	}
	return testutil.CSV(lines...)
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"sales.csv", "sales"},
		{"sales 2024.csv", "sales_2024"},
		{"my-data.v2.json", "my_data_v2"},
		{"données.xlsx", "donn_es"},
		{"dir/nested.parquet", "nested"},
		{"2024.csv", "2024"},
		{"noext", "noext"},
		{".csv", "_csv"},
		{".hidden.csv", "_hidden"},
		{"dir/.env", "_env"},
		{"", "table"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, Identifier(tt.fileName))
		})
	}
}

func TestIdentifier_MapsRunesOneForOne(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	names := []string{
		"a.csv", "Quarterly Report (final).xlsx", "ünïcödé.json", "x$y%z.parquet",
		"tab\there.csv", "日本語.csv", "a..b.csv", "--.csv", "CamelCase99.CSV",
	}

	for _, name := range names {
		ident := Identifier(name)
		base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

		assert.Regexp(t, valid, ident, name)
		require.Equal(t, utf8.RuneCountInString(base), utf8.RuneCountInString(ident), name)

		baseRunes := []rune(base)
		for i, r := range ident {
			if r != '_' {
				assert.Equal(t, baseRunes[i], r, "%s: position %d", name, i)
			}
		}
	}
}

func TestUniqueIdentifier(t *testing.T) {
	taken := map[string]bool{"sales": true, "sales_2": true}
	got := uniqueIdentifier("sales", func(s string) bool { return taken[s] })
	assert.Equal(t, "sales_3", got)
	assert.Equal(t, "other", uniqueIdentifier("other", func(s string) bool { return taken[s] }))
}

func TestSession_LoadFiles(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)

	report := s.LoadFiles(ctx, []Upload{
		{Name: "sales.csv", Data: salesCSV()},
		{Name: "notes.txt", Data: []byte("hello")},
		{Name: "broken.csv", Data: testutil.CSV("a,b", "1,2,3")},
		{Name: "events.json", Data: []byte(`[{"id": 1, "kind": "click"}]`)},
	})

	require.Len(t, report.Entries, 4)
	assert.Equal(t, LoadLoaded, report.Entries[0].Status)
	assert.Equal(t, LoadUnsupported, report.Entries[1].Status)
	assert.ErrorIs(t, report.Entries[1].Err, frame.ErrUnsupportedFormat)
	assert.Equal(t, LoadFailed, report.Entries[2].Status)
	var perr *frame.ParseError
	assert.ErrorAs(t, report.Entries[2].Err, &perr)
	assert.Equal(t, LoadLoaded, report.Entries[3].Status)
	assert.Equal(t, 2, report.Count(LoadLoaded))

	tables := s.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, LoadedTable{FileName: "sales.csv", Identifier: "sales", RowCount: 25, Columns: []string{"id", "region", "amount"}}, tables[0])
	assert.Equal(t, "events", tables[1].Identifier)

	assert.Contains(t, report.Entries[0].Message(), "sales.csv loaded as sales (25 rows)")
	assert.Contains(t, report.Entries[2].Message(), "broken.csv: invalid CSV")
}

func TestSession_LoadFilesIsIdempotentByName(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)

	first := s.LoadFiles(ctx, []Upload{{Name: "sales.csv", Data: salesCSV()}})
	second := s.LoadFiles(ctx, []Upload{{Name: "sales.csv", Data: salesCSV()}})

	assert.Equal(t, LoadLoaded, first.Entries[0].Status)
	assert.Equal(t, LoadSkipped, second.Entries[0].Status)
	assert.Len(t, s.Tables(), 1)
	assert.Empty(t, second.Loaded())
}

func TestSession_LoadFilesSuffixesCollidingIdentifiers(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)

	report := s.LoadFiles(ctx, []Upload{
		{Name: "sales.csv", Data: testutil.CSV("a", "1")},
		{Name: "sales.json", Data: []byte(`[{"a": 2}]`)},
		{Name: "SALES.parquet", Data: testutil.ParquetBytes(t, "SELECT 3 AS a")},
	})

	require.Equal(t, 3, report.Count(LoadLoaded))
	idents := []string{}
	for _, tbl := range s.Tables() {
		idents = append(idents, tbl.Identifier)
	}
	assert.Equal(t, []string{"sales", "sales_2", "SALES_3"}, idents)

	res, err := s.Execute(ctx, `SELECT a FROM "sales_2"`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(2)}}, res.Rows)
}

func TestSession_Execute(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)
	s.LoadFiles(ctx, []Upload{{Name: "sales.csv", Data: salesCSV()}})

	res, err := s.Execute(ctx, `SELECT * FROM "sales" LIMIT 10`)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "region", "amount"}, res.Columns)
	assert.Equal(t, []string{"BIGINT", "VARCHAR", "DOUBLE"}, res.Types)
	assert.LessOrEqual(t, res.RowCount(), 10)
	assert.Equal(t, 10, res.RowCount())
	assert.Same(t, res, s.LastResult())
	assert.Equal(t, EditorExecutedOK, s.Editor().State)
}

func TestSession_ExecuteFailureKeepsLastResult(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)

	good, err := s.Execute(ctx, "SELECT 42 AS answer")
	require.NoError(t, err)

	_, err = s.Execute(ctx, "SELECT * FROM missing_table")
	require.Error(t, err)

	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.Contains(t, qerr.Error(), "missing_table")
	assert.Equal(t, "SELECT * FROM missing_table", qerr.SQL)
	assert.Same(t, good, s.LastResult())
	assert.Equal(t, EditorExecutedFailed, s.Editor().State)
}

func TestSession_ExecuteEmpty(t *testing.T) {
	s := openTestSession(t)

	for _, sql := range []string{"", "   ", "\n\t"} {
		_, err := s.Execute(context.Background(), sql)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
	assert.Nil(t, s.LastResult())
}

func TestResult_WriteCSV(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)

	res, err := s.Execute(ctx, `SELECT * FROM (VALUES (1, 'a,b', NULL), (2, 'plain', 1.5::DOUBLE)) AS t(id, label, score)`)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteCSV(&buf))
	assert.Equal(t, "id,label,score\n1,\"a,b\",\n2,plain,1.5\n", buf.String())
}

func TestResult_StringsAndSample(t *testing.T) {
	res := &Result{
		Columns: []string{"n", "label"},
		Rows:    [][]any{{int64(1), nil}, {int64(2), "x"}, {int64(3), []byte("y")}},
	}

	assert.Equal(t, [][]string{{"1", "NULL"}, {"2", "x"}}, res.Strings(2))
	assert.Len(t, res.Strings(0), 3)

	sample := res.SampleText(2)
	assert.Contains(t, sample, "label")
	assert.Contains(t, sample, "NULL")
	assert.NotContains(t, sample, "│ 3 ")
	assert.Contains(t, sample, "(3 rows total)")
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, "NULL"},
		{"string", "hello", "hello"},
		{"int", 42, "42"},
		{"int64", int64(100), "100"},
		{"float", 3.14, "3.14"},
		{"large float", 1e6, "1000000"},
		{"bytes", []byte("world"), "world"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.input))
		})
	}
}

func TestSession_SchemaSummary(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)

	summary, err := s.SchemaSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No tables are loaded.", summary)

	s.LoadFiles(ctx, []Upload{{Name: "sales.csv", Data: salesCSV()}})
	summary, err = s.SchemaSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sales (from sales.csv): id BIGINT, region VARCHAR, amount DOUBLE", summary)

	_, err = s.Execute(ctx, `DROP TABLE "sales"`)
	require.NoError(t, err)
	summary, err = s.SchemaSummary(ctx)
	require.NoError(t, err)
	assert.Contains(t, summary, "unavailable")
}

func TestEditor_Transitions(t *testing.T) {
	var e Editor
	assert.Equal(t, EditorEmpty, e.State)

	e.draft("SELECT 1")
	assert.Equal(t, EditorDrafted, e.State)

	e.edit("SELECT 1")
	assert.Equal(t, EditorDrafted, e.State, "unchanged text keeps state")

	e.Explained = true
	e.edit("SELECT 2")
	assert.Equal(t, EditorEdited, e.State)
	assert.False(t, e.Explained)

	e.executed(true)
	assert.Equal(t, EditorExecutedOK, e.State)
	e.executed(false)
	assert.Equal(t, EditorExecutedFailed, e.State)

	e.edit("")
	assert.Equal(t, EditorEmpty, e.State)
	assert.Equal(t, "empty", e.State.String())
}
