// Package adapter wraps the embedded DuckDB engine that holds a session's
// registered tables.
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/querydeck/internal/frame"
)

// Column is one column of a registered table as the engine reports it.
type Column struct {
	Name string
	Type string
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// Adapter is the engine surface a session needs.
type Adapter interface {
	// Close closes the database connection and releases resources.
	Close() error

	// Query executes a SQL statement that returns rows. Engine errors are
	// returned unwrapped.
	Query(ctx context.Context, sql string) (*Rows, error)

	// Register creates table name from a parsed frame. On failure no table
	// is left behind.
	Register(ctx context.Context, name string, f *frame.Frame) error

	// Columns lists a table's columns in ordinal order.
	Columns(ctx context.Context, table string) ([]Column, error)
}
