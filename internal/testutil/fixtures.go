package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	// DuckDB writes the Parquet fixtures.
	_ "github.com/marcboeker/go-duckdb"
)

// XLSXBytes builds a single-sheet workbook from rows, the first being the header.
func XLSXBytes(t testing.TB, rows [][]any) []byte {
	t.Helper()

	book := excelize.NewFile()
	defer func() { _ = book.Close() }()

	sheet := book.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cell, &row))
	}

	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// ParquetBytes runs query in a scratch DuckDB database and returns its
// result encoded as Parquet.
func ParquetBytes(t testing.TB, query string) []byte {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	path := filepath.Join(t.TempDir(), "fixture.parquet")
	copySQL := "COPY (" + query + ") TO '" + strings.ReplaceAll(path, "'", "''") + "' (FORMAT PARQUET)"
	_, err = db.Exec(copySQL)
	require.NoError(t, err)

	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	require.NoError(t, err)
	return data
}

// CSV joins lines with newlines and a trailing newline.
func CSV(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}
