// Package frame holds parsed tabular data and the per-format parsers that
// produce it from uploaded bytes.
//
// A Frame is engine-agnostic: every cell is one of nil, int64, float64, bool,
// string or time.Time, and every column carries the DuckDB type its cells
// were inferred or mapped to.
package frame

import (
	"errors"
	"fmt"
	"strings"
)

// Type is the engine column type a parsed column is registered with.
type Type string

// Column types produced by the parsers.
const (
	TypeBigint    Type = "BIGINT"
	TypeDouble    Type = "DOUBLE"
	TypeBoolean   Type = "BOOLEAN"
	TypeDate      Type = "DATE"
	TypeTimestamp Type = "TIMESTAMP"
	TypeVarchar   Type = "VARCHAR"
)

// Column describes one column of a Frame.
type Column struct {
	Name string
	Type Type
}

// Frame is an in-memory table: ordered columns and row-major cells.
type Frame struct {
	Columns []Column
	Rows    [][]any
}

// NumRows returns the number of data rows.
func (f *Frame) NumRows() int {
	return len(f.Rows)
}

// ColumnNames returns the column names in order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// validate rejects frames the engine cannot hold.
func (f *Frame) validate() error {
	if len(f.Columns) == 0 {
		return errors.New("no columns found")
	}
	for i, row := range f.Rows {
		if len(row) != len(f.Columns) {
			return fmt.Errorf("row %d has %d values, expected %d", i+1, len(row), len(f.Columns))
		}
	}
	return nil
}

// ParseError reports content that could not be read as the named format.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// uniqueHeaders trims header names, names blank headers column_N and
// suffixes repeats so every column name is distinct.
func uniqueHeaders(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		key := strings.ToLower(name)
		if n, ok := seen[key]; ok {
			for {
				n++
				candidate := fmt.Sprintf("%s_%d", name, n)
				if _, taken := seen[strings.ToLower(candidate)]; !taken {
					seen[key] = n
					name = candidate
					key = strings.ToLower(candidate)
					break
				}
			}
		}
		seen[key] = 0
		out[i] = name
	}
	return out
}
