package assist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"sql fence", "```sql\nSELECT * FROM \"sales\";\n```", `SELECT * FROM "sales";`},
		{"bare fence", "```\nSELECT 1\n```", "SELECT 1"},
		{"upper case tag", "```SQL\nSELECT 1\n```", "SELECT 1"},
		{"no fence", "  SELECT 1  \n", "SELECT 1"},
		{"prose before fence", "Here is the query:\n\n```sql\nSELECT region\nFROM t\n```\nIt groups by region.", "SELECT region\nFROM t"},
		{"first of two fences", "```sql\nSELECT 1\n```\nor\n```sql\nSELECT 2\n```", "SELECT 1"},
		{"unclosed fence", "```sql\nSELECT 3", "SELECT 3"},
		{"single line fence", "```SELECT 4```", "SELECT 4"},
		{"single line tagged fence", "```sql SELECT 4```", "SELECT 4"},
		{"single line upper case tag", "```SQL  SELECT 4 ```", "SELECT 4"},
		{"single line keyword kept", "```SELECT\t4```", "SELECT\t4"},
		{"crlf", "```sql\r\nSELECT 5\r\n```", "SELECT 5"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSQL(tt.reply))
		})
	}
}

func TestPrompts(t *testing.T) {
	schema := "sales (from sales.csv): id BIGINT, region VARCHAR"

	draft := DraftPrompt(schema, "  total by region ")
	assert.Contains(t, draft, schema)
	assert.Contains(t, draft, "Request: total by region\n")
	assert.Contains(t, draft, "DuckDB")

	explain := ExplainPrompt(schema, "SELECT 1")
	assert.Contains(t, explain, "```sql\nSELECT 1\n```")

	insights := InsightsPrompt("SELECT 1", "┌───┐", 42)
	assert.Contains(t, insights, "42 rows")
	assert.Contains(t, insights, "┌───┐")
}
