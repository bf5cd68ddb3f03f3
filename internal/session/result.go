package session

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/marcboeker/go-duckdb"
)

// ResultFileName is the download name for an exported result.
const ResultFileName = "query_results.csv"

// Result is the complete output of one successful query.
type Result struct {
	SQL     string
	Columns []string
	Types   []string
	Rows    [][]any
	Elapsed time.Duration
}

// RowCount returns the number of rows.
func (r *Result) RowCount() int {
	return len(r.Rows)
}

// FormatValue renders one cell for display. NULL is shown as "NULL".
func FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return formatCell(v)
}

// formatCell renders a non-nil cell.
func formatCell(v any) string {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case duckdb.Decimal:
		return strconv.FormatFloat(x.Float64(), 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// Strings returns up to limit rows rendered with FormatValue. A limit of
// zero or less returns every row.
func (r *Result) Strings(limit int) [][]string {
	n := len(r.Rows)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(r.Rows[i]))
		for j, v := range r.Rows[i] {
			row[j] = FormatValue(v)
		}
		out[i] = row
	}
	return out
}

// WriteCSV writes a header row and every result row as UTF-8 CSV.
// NULL cells are written empty.
func (r *Result) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return err
	}
	record := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		for i, v := range row {
			if v == nil {
				record[i] = ""
				continue
			}
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SampleText renders the first n rows as a plain text table followed by
// the total row count.
func (r *Result) SampleText(n int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(r.Columns))
	for i, c := range r.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)

	for _, row := range r.Strings(n) {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		tw.AppendRow(tr)
	}

	return fmt.Sprintf("%s\n(%d rows total)", tw.Render(), len(r.Rows))
}
