package session

import (
	"context"
)

// insightSampleRows is how many result rows go into an insights request.
const insightSampleRows = 20

// Assistant generates SQL and prose for a session.
type Assistant interface {
	Draft(ctx context.Context, schema, request string) (string, error)
	Explain(ctx context.Context, schema, sql string) (string, error)
	Insights(ctx context.Context, sql, sample string, totalRows int) (string, error)
}

// Draft asks the assistant for SQL answering request and puts it in the
// editor. The editor is unchanged when drafting fails.
func (s *Session) Draft(ctx context.Context, a Assistant, request string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schema, err := s.schemaSummary(ctx)
	if err != nil {
		return "", err
	}
	sql, err := a.Draft(ctx, schema, request)
	if err != nil {
		return "", err
	}
	s.editor.draft(sql)
	return sql, nil
}

// Explain asks the assistant to describe sql. Empty sql falls back to the
// editor's text.
func (s *Session) Explain(ctx context.Context, a Assistant, sql string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sql == "" {
		sql = s.editor.SQL
	} else {
		s.editor.edit(sql)
	}
	if sql == "" {
		return "", ErrEmptyQuery
	}

	schema, err := s.schemaSummary(ctx)
	if err != nil {
		return "", err
	}
	text, err := a.Explain(ctx, schema, sql)
	if err != nil {
		return "", err
	}
	s.editor.Explained = true
	return text, nil
}

// Insights asks the assistant to summarize the last successful result.
func (s *Session) Insights(ctx context.Context, a Assistant) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return "", ErrNoResult
	}
	text, err := a.Insights(ctx, s.last.SQL, s.last.SampleText(insightSampleRows), s.last.RowCount())
	if err != nil {
		return "", err
	}
	s.editor.InsightsShown = true
	return text, nil
}
