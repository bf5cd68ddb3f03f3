package components

// PageData is everything the full page render needs.
type PageData struct {
	Title        string
	Tables       []TableItem
	SQL          string
	Accept       string
	MaxUploadMB  int
	AIConfigured bool
	AIProvider   string
	Result       *ResultData
	IsDev        bool
}

// TableItem is one loaded table in the sidebar.
type TableItem struct {
	FileName   string
	Identifier string
	RowCount   int
	Columns    []string
}

// ReportEntry is one line of a load report.
type ReportEntry struct {
	Status  string
	Message string
}

// ResultData is a rendered query result or a query error.
type ResultData struct {
	SQL       string
	Columns   []string
	Types     []string
	Rows      [][]string
	RowCount  int
	Truncated bool
	QueryMS   int64
	Error     string
}

// Notice levels.
const (
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// NoticeData is a one-line status message.
type NoticeData struct {
	Level   string
	Message string
}

// AssistData is text returned by the assistant.
type AssistData struct {
	Title string
	Text  string
}
