package session

// EditorState tracks where the query editor is in the draft/edit/run cycle.
type EditorState int

// Editor states.
const (
	EditorEmpty EditorState = iota
	EditorDrafted
	EditorEdited
	EditorExecutedOK
	EditorExecutedFailed
)

func (s EditorState) String() string {
	switch s {
	case EditorEmpty:
		return "empty"
	case EditorDrafted:
		return "drafted"
	case EditorEdited:
		return "edited"
	case EditorExecutedOK:
		return "executed"
	case EditorExecutedFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Editor is the query text a session is working on.
type Editor struct {
	SQL   string
	State EditorState

	// Explained and InsightsShown are set by the assistant actions and do
	// not move State.
	Explained     bool
	InsightsShown bool
}

// draft replaces the text with generated SQL.
func (e *Editor) draft(sql string) {
	e.SQL = sql
	e.State = EditorDrafted
	e.Explained = false
	e.InsightsShown = false
}

// edit records user-typed text. Unchanged text keeps the current state.
func (e *Editor) edit(sql string) {
	if sql == e.SQL {
		return
	}
	e.SQL = sql
	e.Explained = false
	e.InsightsShown = false
	if sql == "" {
		e.State = EditorEmpty
		return
	}
	e.State = EditorEdited
}

func (e *Editor) executed(ok bool) {
	if ok {
		e.State = EditorExecutedOK
		e.InsightsShown = false
		return
	}
	e.State = EditorExecutedFailed
}
