package adapter

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcboeker/go-duckdb"

	"github.com/leapstack-labs/querydeck/internal/frame"
)

const mainSchema = "main"

// DuckDBAdapter implements the Adapter interface for an in-memory DuckDB
// database. Nothing it holds outlives Close.
type DuckDBAdapter struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDuckDBAdapter creates a new DuckDB adapter instance.
func NewDuckDBAdapter(logger *slog.Logger) *DuckDBAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DuckDBAdapter{logger: logger}
}

// OpenDuckDB creates an adapter and connects it.
func OpenDuckDB(ctx context.Context, logger *slog.Logger) (*DuckDBAdapter, error) {
	a := NewDuckDBAdapter(logger)
	if err := a.Connect(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Connect opens a fresh in-memory database.
func (a *DuckDBAdapter) Connect(ctx context.Context) error {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}

	// An in-memory database lives as long as its single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	a.db = db
	a.logger.Debug("duckdb opened")

	return nil
}

// Close closes the DuckDB connection.
func (a *DuckDBAdapter) Close() error {
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		return err
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (a *DuckDBAdapter) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := a.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, err
	}

	return &Rows{Rows: rows}, nil
}

// Register creates the table and bulk-loads the frame's rows through the
// DuckDB appender. Both steps share one connection.
func (a *DuckDBAdapter) Register(ctx context.Context, name string, f *frame.Frame) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, createTableSQL(name, f.Columns)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", name, err)
	}

	err = conn.Raw(func(driverConn any) error {
		dc, ok := driverConn.(driver.Conn)
		if !ok {
			return errors.New("unexpected driver connection type")
		}
		return appendRows(dc, name, f.Rows)
	})
	if err != nil {
		if _, dropErr := conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(name)); dropErr != nil {
			a.logger.Warn("failed to drop partial table", slog.String("table", name), slog.String("error", dropErr.Error()))
		}
		return fmt.Errorf("failed to load rows into %s: %w", name, err)
	}

	a.logger.Debug("table registered",
		slog.String("table", name),
		slog.Int("columns", len(f.Columns)),
		slog.Int("rows", f.NumRows()))
	return nil
}

func appendRows(dc driver.Conn, table string, rows [][]any) error {
	appender, err := duckdb.NewAppenderFromConn(dc, "", table)
	if err != nil {
		return err
	}

	values := make([]driver.Value, 0)
	for i, row := range rows {
		values = values[:0]
		for _, v := range row {
			values = append(values, v)
		}
		if err := appender.AppendRow(values...); err != nil {
			_ = appender.Close()
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return appender.Close()
}

func createTableSQL(name string, columns []frame.Column) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = QuoteIdent(c.Name) + " " + string(c.Type)
	}
	return "CREATE TABLE " + QuoteIdent(name) + " (" + strings.Join(defs, ", ") + ")"
}

// Columns reads a table's columns from information_schema.
func (a *DuckDBAdapter) Columns(ctx context.Context, table string) ([]Column, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	query := `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := a.db.QueryContext(ctx, query, mainSchema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return columns, nil
}

// Ensure DuckDBAdapter implements Adapter interface
var _ Adapter = (*DuckDBAdapter)(nil)
