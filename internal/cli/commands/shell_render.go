package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/querydeck/internal/session"
)

// renderResult prints res in format. limit caps printed rows for the table
// and markdown formats; csv and json always carry every row.
func renderResult(w io.Writer, res *session.Result, format string, limit int) error {
	switch format {
	case "csv":
		return res.WriteCSV(w)
	case "json":
		return renderJSON(w, res)
	case "md", "markdown":
		return renderGrid(w, res, limit, true)
	default:
		return renderGrid(w, res, limit, false)
	}
}

func renderGrid(w io.Writer, res *session.Result, limit int, markdown bool) error {
	if len(res.Columns) == 0 {
		_, _ = fmt.Fprintln(w, "OK")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	rows := res.Strings(limit)
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}

	if markdown {
		_, _ = fmt.Fprintln(w, t.RenderMarkdown())
	} else {
		_, _ = fmt.Fprintln(w, t.Render())
	}
	_, _ = fmt.Fprintln(w, rowSummary(len(rows), res.RowCount(), res.Elapsed))
	return nil
}

func rowSummary(shown, total int, elapsed time.Duration) string {
	noun := "rows"
	if total == 1 {
		noun = "row"
	}
	s := fmt.Sprintf("(%s %s", humanize.Comma(int64(total)), noun)
	if shown < total {
		s += fmt.Sprintf(", showing first %s", humanize.Comma(int64(shown)))
	}
	if elapsed > 0 {
		s += ", " + elapsed.Round(time.Millisecond).String()
	}
	return s + ")"
}

func renderJSON(w io.Writer, res *session.Result) error {
	out := make([]map[string]any, len(res.Rows))
	for i, r := range res.Rows {
		row := make(map[string]any, len(res.Columns))
		for j, col := range res.Columns {
			row[col] = jsonValue(r[j])
		}
		out[i] = row
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// jsonValue keeps numbers, booleans and nulls native and renders everything
// else the way the table view does.
func jsonValue(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return session.FormatValue(x)
		}
		return x
	case nil, bool, int8, int16, int32, int64, uint8, uint16, uint32, uint64, float32, string:
		return v
	default:
		return session.FormatValue(v)
	}
}

func renderTables(w io.Writer, tables []session.LoadedTable) {
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, "No tables loaded. Use .load <file>.")
		return
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.AppendHeader(table.Row{"Table", "File", "Rows", "Columns"})
	for _, tbl := range tables {
		t.AppendRow(table.Row{tbl.Identifier, tbl.FileName, humanize.Comma(int64(tbl.RowCount)), strings.Join(tbl.Columns, ", ")})
	}
	_, _ = fmt.Fprintln(w, t.Render())
}
