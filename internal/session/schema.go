package session

import (
	"context"
	"fmt"
	"strings"
)

// SchemaSummary describes every loaded table, one line each, using the
// engine's current catalog:
//
//	sales (from sales.csv): id BIGINT, region VARCHAR, amount DOUBLE
func (s *Session) SchemaSummary(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schemaSummary(ctx)
}

func (s *Session) schemaSummary(ctx context.Context) (string, error) {
	if len(s.tables) == 0 {
		return "No tables are loaded.", nil
	}

	var b strings.Builder
	for _, t := range s.tables {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		columns, err := s.engine.Columns(ctx, t.Identifier)
		if err != nil {
			// The user may have dropped or replaced the table with SQL.
			fmt.Fprintf(&b, "%s (from %s): unavailable\n", t.Identifier, t.FileName)
			continue
		}
		cols := make([]string, len(columns))
		for i, c := range columns {
			cols[i] = c.Name + " " + c.Type
		}
		fmt.Fprintf(&b, "%s (from %s): %s\n", t.Identifier, t.FileName, strings.Join(cols, ", "))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
