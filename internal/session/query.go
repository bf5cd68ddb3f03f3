package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/querydeck/internal/adapter"
)

// ErrEmptyQuery is returned for blank query text. The engine is not called.
var ErrEmptyQuery = errors.New("query cannot be empty")

// QueryError is an engine rejection. Its message is the engine's own.
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Execute runs sql unchanged against the session's engine. A successful
// result becomes the session's last result; a failure leaves it as it was.
func (s *Session) Execute(ctx context.Context, sql string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor.edit(sql)
	if strings.TrimSpace(sql) == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	res, err := collect(ctx, s.engine, sql)
	if err != nil {
		s.editor.executed(false)
		s.logger.Debug("query failed", slog.String("error", err.Error()))
		return nil, &QueryError{SQL: sql, Err: err}
	}
	res.Elapsed = time.Since(start)

	s.last = res
	s.editor.executed(true)
	s.logger.Debug("query executed",
		slog.Int("rows", len(res.Rows)),
		slog.Duration("elapsed", res.Elapsed))
	return res, nil
}

func collect(ctx context.Context, engine adapter.Adapter, sql string) (*Result, error) {
	rows, err := engine.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	types := make([]string, len(cols))
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			types[i] = ct.DatabaseTypeName()
		}
	}

	res := &Result{SQL: sql, Columns: cols, Types: types}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(res.Rows)+1, err)
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
