package frame

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/leapstack-labs/querydeck/internal/testutil"
)

func TestFormatFor(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		want     string
	}{
		{"csv", "sales.csv", "CSV"},
		{"upper case extension", "SALES.CSV", "CSV"},
		{"xlsx", "book.xlsx", "XLSX"},
		{"json", "events.json", "JSON"},
		{"parquet", "facts.parquet", "Parquet"},
		{"legacy excel", "old.xls", "unsupported"},
		{"text", "notes.txt", "unsupported"},
		{"no extension", "README", "unsupported"},
		{"content ignored", "data.csv.txt", "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFor(tt.fileName).String())
		})
	}
}

func TestFormat_ParseUnsupported(t *testing.T) {
	_, err := FormatFor("notes.txt").Parse([]byte("a,b\n1,2\n"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, Unsupported.Supported())
	assert.True(t, CSV.Supported())
}

func TestParseCSV(t *testing.T) {
	data := testutil.CSV(
		"id,name,score,active,joined",
		"1,alice,3.5,true,2024-01-02",
		"2,bob,,false,2024-02-03",
		"3,carol,4,TRUE,",
	)

	f, err := ParseCSV(data)
	require.NoError(t, err)

	assert.Equal(t, []Column{
		{Name: "id", Type: TypeBigint},
		{Name: "name", Type: TypeVarchar},
		{Name: "score", Type: TypeDouble},
		{Name: "active", Type: TypeBoolean},
		{Name: "joined", Type: TypeDate},
	}, f.Columns)
	require.Equal(t, 3, f.NumRows())
	assert.Equal(t, []any{int64(1), "alice", 3.5, true, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, f.Rows[0])
	assert.Nil(t, f.Rows[1][2])
	assert.Nil(t, f.Rows[2][4])
	assert.Equal(t, 4.0, f.Rows[2][2])
}

func TestParseCSV_Encodings(t *testing.T) {
	t.Run("utf-8 bom", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, testutil.CSV("city", "Zürich")...)
		f, err := ParseCSV(data)
		require.NoError(t, err)
		assert.Equal(t, "city", f.Columns[0].Name)
		assert.Equal(t, "Zürich", f.Rows[0][0])
	})

	t.Run("utf-16 little endian", func(t *testing.T) {
		text := "n\n7\n"
		data := []byte{0xFF, 0xFE}
		for _, r := range text {
			data = append(data, byte(r), 0)
		}
		f, err := ParseCSV(data)
		require.NoError(t, err)
		assert.Equal(t, "n", f.Columns[0].Name)
		assert.Equal(t, int64(7), f.Rows[0][0])
	})
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"ragged row", testutil.CSV("a,b", "1,2", "3,4,5")},
		{"bare quote", testutil.CSV("a,b", `1,"unterminated`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(tt.data)
			require.Error(t, err)
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "CSV", perr.Format)
		})
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	f, err := ParseCSV(testutil.CSV("a,b"))
	require.NoError(t, err)
	assert.Equal(t, 0, f.NumRows())
	assert.Equal(t, []string{"a", "b"}, f.ColumnNames())
	assert.Equal(t, TypeVarchar, f.Columns[0].Type)
}

func TestUniqueHeaders(t *testing.T) {
	got := uniqueHeaders([]string{"id", " name ", "", "id", "ID", "id_1"})
	assert.Equal(t, []string{"id", "name", "column_3", "id_1", "ID_2", "id_1_1"}, got)
}

func TestInferType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   Type
	}{
		{"all empty", []string{"", " ", "NA"}, TypeVarchar},
		{"integers", []string{"1", "-2", ""}, TypeBigint},
		{"mixed numbers", []string{"1", "2.5"}, TypeDouble},
		{"booleans", []string{"true", "False"}, TypeBoolean},
		{"zero and one stay numeric", []string{"0", "1"}, TypeBigint},
		{"dates", []string{"2024-01-01", "2023-12-31"}, TypeDate},
		{"dates and timestamps", []string{"2024-01-01", "2024-01-02 08:30:00"}, TypeTimestamp},
		{"mixed", []string{"1", "x"}, TypeVarchar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferType(tt.values))
		})
	}
}

func TestParseXLSX(t *testing.T) {
	data := testutil.XLSXBytes(t, [][]any{
		{"region", "units"},
		{"north", 10},
		{"south"},
		{"east", 7, "extra"},
	})

	f, err := ParseXLSX(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "units", "column_3"}, f.ColumnNames())
	assert.Equal(t, TypeBigint, f.Columns[1].Type)
	require.Equal(t, 3, f.NumRows())
	assert.Equal(t, []any{"north", int64(10), nil}, f.Rows[0])
	assert.Equal(t, []any{"south", nil, nil}, f.Rows[1])
	assert.Equal(t, "extra", f.Rows[2][2])
}

func TestParseXLSX_StyledCells(t *testing.T) {
	book := excelize.NewFile()
	defer func() { _ = book.Close() }()
	sheet := book.GetSheetName(0)

	money, err := book.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	shortDate, err := book.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	custom := "yyyy-mm-dd hh:mm"
	stamp, err := book.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	require.NoError(t, err)

	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]any{"day", "amount", "at"}))
	cells := []struct {
		cell  string
		value any
		style int
	}{
		{"A2", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), shortDate},
		{"B2", 1234.5, money},
		{"C2", time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC), stamp},
		{"A3", time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), shortDate},
		{"B3", 10, money},
		{"C3", time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), stamp},
	}
	for _, c := range cells {
		require.NoError(t, book.SetCellValue(sheet, c.cell, c.value))
		require.NoError(t, book.SetCellStyle(sheet, c.cell, c.cell, c.style))
	}
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	f, err := ParseXLSX(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, []Column{
		{Name: "day", Type: TypeDate},
		{Name: "amount", Type: TypeDouble},
		{Name: "at", Type: TypeTimestamp},
	}, f.Columns)
	require.Equal(t, 2, f.NumRows())
	assert.Equal(t, []any{
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		1234.5,
		time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC),
	}, f.Rows[0])
	assert.Equal(t, []any{
		time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
		float64(10),
		time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
	}, f.Rows[1])
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"h:mm AM/PM", true},
		{"#,##0.00", false},
		{`0.0 "days"`, false},
		{"[Red]0.00", false},
		{`0\d`, false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}

func TestParseXLSX_Corrupt(t *testing.T) {
	_, err := ParseXLSX([]byte("not a workbook"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "XLSX", perr.Format)
}

func TestParseJSON_Records(t *testing.T) {
	data := []byte(`[
		{"id": 1, "name": "a", "tags": ["x"]},
		{"id": 2, "score": 1.5},
		{"id": 3, "name": null, "score": 2}
	]`)

	f, err := ParseJSON(data)
	require.NoError(t, err)

	assert.Equal(t, []Column{
		{Name: "id", Type: TypeBigint},
		{Name: "name", Type: TypeVarchar},
		{Name: "tags", Type: TypeVarchar},
		{Name: "score", Type: TypeDouble},
	}, f.Columns)
	require.Equal(t, 3, f.NumRows())
	assert.Equal(t, []any{int64(1), "a", `["x"]`, nil}, f.Rows[0])
	assert.Equal(t, []any{int64(2), nil, nil, 1.5}, f.Rows[1])
	assert.Equal(t, 2.0, f.Rows[2][3])
}

func TestParseJSON_Columns(t *testing.T) {
	t.Run("arrays", func(t *testing.T) {
		f, err := ParseJSON([]byte(`{"id": [1, 2], "ok": [true, false]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "ok"}, f.ColumnNames())
		assert.Equal(t, [][]any{{int64(1), true}, {int64(2), false}}, f.Rows)
	})

	t.Run("indexed objects", func(t *testing.T) {
		f, err := ParseJSON([]byte(`{"id": {"0": 1, "1": 2}, "name": {"1": "b"}}`))
		require.NoError(t, err)
		assert.Equal(t, [][]any{{int64(1), nil}, {int64(2), "b"}}, f.Rows)
	})
}

func TestParseJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `[{"id": 1}`},
		{"scalar root", `42`},
		{"non-object record", `[1, 2]`},
		{"scalar column", `{"id": 1}`},
		{"no columns", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "JSON", perr.Format)
		})
	}
}

func TestParseParquet(t *testing.T) {
	data := testutil.ParquetBytes(t, `
		SELECT * FROM (VALUES
			(1::BIGINT, 'a', 1.5::DOUBLE, true, DATE '2024-03-01'),
			(2::BIGINT, NULL, NULL, false, NULL)
		) AS t(id, name, score, ok, day)`)

	f, err := ParseParquet(data)
	require.NoError(t, err)

	assert.Equal(t, []Column{
		{Name: "id", Type: TypeBigint},
		{Name: "name", Type: TypeVarchar},
		{Name: "score", Type: TypeDouble},
		{Name: "ok", Type: TypeBoolean},
		{Name: "day", Type: TypeDate},
	}, f.Columns)
	require.Equal(t, 2, f.NumRows())
	assert.Equal(t, int64(1), f.Rows[0][0])
	assert.Equal(t, "a", f.Rows[0][1])
	assert.Equal(t, 1.5, f.Rows[0][2])
	assert.Equal(t, true, f.Rows[0][3])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), f.Rows[0][4])
	assert.Equal(t, []any{int64(2), nil, nil, false, nil}, f.Rows[1])
}

func TestParseParquet_Corrupt(t *testing.T) {
	_, err := ParseParquet([]byte("PAR1 but not really"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Parquet", perr.Format)
}
