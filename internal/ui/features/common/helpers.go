package common

import (
	"github.com/leapstack-labs/querydeck/internal/session"
	"github.com/leapstack-labs/querydeck/internal/ui/components"
)

// TableItems converts loaded tables for the sidebar.
func TableItems(tables []session.LoadedTable) []components.TableItem {
	items := make([]components.TableItem, len(tables))
	for i, t := range tables {
		items[i] = components.TableItem{
			FileName:   t.FileName,
			Identifier: t.Identifier,
			RowCount:   t.RowCount,
			Columns:    t.Columns,
		}
	}
	return items
}

// ReportEntries converts a load report into display lines.
func ReportEntries(report session.LoadReport) []components.ReportEntry {
	entries := make([]components.ReportEntry, len(report.Entries))
	for i, e := range report.Entries {
		entries[i] = components.ReportEntry{Status: e.Status.String(), Message: e.Message()}
	}
	return entries
}

// ResultView renders at most limit rows of res. Zero means all rows.
func ResultView(res *session.Result, limit int) components.ResultData {
	rows := res.Strings(limit)
	return components.ResultData{
		SQL:       res.SQL,
		Columns:   res.Columns,
		Types:     res.Types,
		Rows:      rows,
		RowCount:  res.RowCount(),
		Truncated: len(rows) < res.RowCount(),
		QueryMS:   res.Elapsed.Milliseconds(),
	}
}

// ErrorView renders a failed query.
func ErrorView(sql string, err error) components.ResultData {
	return components.ResultData{SQL: sql, Error: err.Error()}
}
