package assist

import (
	"fmt"
	"strings"
)

const dialectNote = "The database is DuckDB. Quote table identifiers with double quotes."

// DraftPrompt asks for one SQL query answering request over the schema.
func DraftPrompt(schema, request string) string {
	var b strings.Builder
	b.WriteString("You write SQL for ad-hoc data analysis. ")
	b.WriteString(dialectNote)
	b.WriteString("\n\nAvailable tables:\n")
	b.WriteString(schema)
	b.WriteString("\n\nWrite a single SQL query that answers the request below. ")
	b.WriteString("Reply with only the SQL in a ```sql fenced block, without commentary.\n\n")
	fmt.Fprintf(&b, "Request: %s\n", strings.TrimSpace(request))
	return b.String()
}

// ExplainPrompt asks for a plain-language walkthrough of sql.
func ExplainPrompt(schema, sql string) string {
	var b strings.Builder
	b.WriteString("Explain what the following SQL query does, step by step, for someone who is new to SQL. ")
	b.WriteString("Mention which tables and columns it uses and what the result will contain.\n\n")
	b.WriteString(dialectNote)
	b.WriteString("\n\nAvailable tables:\n")
	b.WriteString(schema)
	b.WriteString("\n\nQuery:\n```sql\n")
	b.WriteString(strings.TrimSpace(sql))
	b.WriteString("\n```\n")
	return b.String()
}

// InsightsPrompt asks for observations about a query result given a sample.
func InsightsPrompt(sql, sample string, totalRows int) string {
	var b strings.Builder
	b.WriteString("Summarize the key findings in this query result. ")
	b.WriteString("Point out notable patterns, outliers and anything worth a follow-up query. Keep it brief.\n\n")
	b.WriteString("Query:\n```sql\n")
	b.WriteString(strings.TrimSpace(sql))
	b.WriteString("\n```\n\n")
	fmt.Fprintf(&b, "The result has %d rows. ", totalRows)
	b.WriteString("Sample:\n")
	b.WriteString(sample)
	b.WriteString("\n")
	return b.String()
}
