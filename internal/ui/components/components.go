// Package components renders the page and the fragments patched into it
// over SSE.
package components

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/leapstack-labs/querydeck/internal/ui/resources"
)

// Element ids targeted by patches.
const (
	TablesID      = "tables"
	LoadReportID  = "load-report"
	ResultID      = "result"
	AssistID      = "assist-output"
	NoticeID      = "notice"
	SchemaPanelID = "schema-panel"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
	"static": resources.StaticPath,
	"signals": func(sql string) (string, error) {
		b, err := json.Marshal(map[string]string{"sql": sql, "prompt": ""})
		return string(b), err
	},
}).ParseFS(templateFS, "templates/*.html"))

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

// Page is the full document.
func Page(data PageData) templ.Component {
	return render("page", data)
}

// TableList is the sidebar list of loaded tables.
func TableList(tables []TableItem) templ.Component {
	return render("tables", tables)
}

// LoadReport lists per-file load outcomes.
func LoadReport(entries []ReportEntry) templ.Component {
	return render("load-report", entries)
}

// Result renders a query result or error.
func Result(data ResultData) templ.Component {
	return render("result", data)
}

// Notice renders a status line.
func Notice(level, message string) templ.Component {
	return render("notice", NoticeData{Level: level, Message: message})
}

// Assist renders assistant output.
func Assist(title, text string) templ.Component {
	return render("assist", AssistData{Title: title, Text: text})
}

// SchemaPanel renders the schema summary.
func SchemaPanel(summary string) templ.Component {
	return render("schema", summary)
}
