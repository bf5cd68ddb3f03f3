package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssistant struct {
	draft   string
	err     error
	schemas []string
	sample  string
	total   int
}

func (f *fakeAssistant) Draft(_ context.Context, schema, _ string) (string, error) {
	f.schemas = append(f.schemas, schema)
	return f.draft, f.err
}

func (f *fakeAssistant) Explain(_ context.Context, schema, sql string) (string, error) {
	f.schemas = append(f.schemas, schema)
	return "explains " + sql, f.err
}

func (f *fakeAssistant) Insights(_ context.Context, _, sample string, total int) (string, error) {
	f.sample, f.total = sample, total
	return "looks good", f.err
}

func TestSession_Draft(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)
	s.LoadFiles(ctx, []Upload{{Name: "sales.csv", Data: salesCSV()}})

	a := &fakeAssistant{draft: `SELECT region FROM "sales"`}
	sql, err := s.Draft(ctx, a, "list regions")
	require.NoError(t, err)

	assert.Equal(t, `SELECT region FROM "sales"`, sql)
	assert.Equal(t, Editor{SQL: sql, State: EditorDrafted}, s.Editor())
	require.Len(t, a.schemas, 1)
	assert.Contains(t, a.schemas[0], "sales (from sales.csv)")
}

func TestSession_DraftFailureKeepsEditor(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)
	s.SetSQL("SELECT 1")

	_, err := s.Draft(ctx, &fakeAssistant{err: errors.New("down")}, "anything")
	require.Error(t, err)
	assert.Equal(t, "SELECT 1", s.Editor().SQL)
	assert.Equal(t, EditorEdited, s.Editor().State)
}

func TestSession_Explain(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)
	a := &fakeAssistant{}

	_, err := s.Explain(ctx, a, "")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	s.SetSQL("SELECT 1")
	text, err := s.Explain(ctx, a, "")
	require.NoError(t, err)
	assert.Equal(t, "explains SELECT 1", text)
	assert.True(t, s.Editor().Explained)
	assert.Equal(t, EditorEdited, s.Editor().State)
}

func TestSession_Insights(t *testing.T) {
	ctx := context.Background()
	s := openTestSession(t)
	s.LoadFiles(ctx, []Upload{{Name: "sales.csv", Data: salesCSV()}})
	a := &fakeAssistant{}

	_, err := s.Insights(ctx, a)
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = s.Execute(ctx, `SELECT * FROM "sales" ORDER BY id`)
	require.NoError(t, err)

	text, err := s.Insights(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "looks good", text)
	assert.Equal(t, 25, a.total)
	assert.Contains(t, a.sample, "north")
	assert.Contains(t, a.sample, "(25 rows total)")
	assert.NotContains(t, a.sample, "│ 21 ")
	assert.True(t, s.Editor().InsightsShown)
	assert.Equal(t, EditorExecutedOK, s.Editor().State)
}
