package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/querydeck/internal/frame"
)

// Upload is one file handed to LoadFiles.
type Upload struct {
	Name string
	Data []byte
}

// LoadStatus is the outcome of loading one file.
type LoadStatus int

// Load outcomes.
const (
	LoadLoaded LoadStatus = iota
	LoadSkipped
	LoadUnsupported
	LoadFailed
)

func (s LoadStatus) String() string {
	switch s {
	case LoadLoaded:
		return "loaded"
	case LoadSkipped:
		return "skipped"
	case LoadUnsupported:
		return "unsupported"
	case LoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadEntry reports what happened to one file. Table is set for loaded
// files and Err for unsupported or failed ones.
type LoadEntry struct {
	FileName string
	Status   LoadStatus
	Table    *LoadedTable
	Err      error
}

// Message is the one-line text shown for the entry.
func (e LoadEntry) Message() string {
	switch e.Status {
	case LoadLoaded:
		return fmt.Sprintf("%s loaded as %s (%d rows)", e.FileName, e.Table.Identifier, e.Table.RowCount)
	case LoadSkipped:
		return fmt.Sprintf("%s is already loaded", e.FileName)
	case LoadUnsupported:
		return fmt.Sprintf("%s: unsupported file format", e.FileName)
	default:
		return fmt.Sprintf("%s: %v", e.FileName, e.Err)
	}
}

// LoadReport lists per-file outcomes in upload order.
type LoadReport struct {
	Entries []LoadEntry
}

// Count returns how many entries have the given status.
func (r LoadReport) Count(status LoadStatus) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}

// Loaded returns the tables registered by this batch.
func (r LoadReport) Loaded() []LoadedTable {
	var out []LoadedTable
	for _, e := range r.Entries {
		if e.Status == LoadLoaded {
			out = append(out, *e.Table)
		}
	}
	return out
}

// LoadFiles parses and registers each upload in order. A failing file never
// stops the rest of the batch, and already registered tables are kept.
func (s *Session) LoadFiles(ctx context.Context, uploads []Upload) LoadReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := LoadReport{Entries: make([]LoadEntry, 0, len(uploads))}
	for _, up := range uploads {
		entry := s.loadOne(ctx, up)
		report.Entries = append(report.Entries, entry)

		attrs := []any{slog.String("file", up.Name), slog.String("status", entry.Status.String())}
		if entry.Err != nil {
			attrs = append(attrs, slog.String("error", entry.Err.Error()))
		}
		s.logger.Info("file processed", attrs...)
	}
	return report
}

func (s *Session) loadOne(ctx context.Context, up Upload) LoadEntry {
	if s.hasFile(up.Name) {
		return LoadEntry{FileName: up.Name, Status: LoadSkipped}
	}

	format := frame.FormatFor(up.Name)
	if !format.Supported() {
		return LoadEntry{FileName: up.Name, Status: LoadUnsupported, Err: frame.ErrUnsupportedFormat}
	}

	f, err := format.Parse(up.Data)
	if err != nil {
		return LoadEntry{FileName: up.Name, Status: LoadFailed, Err: err}
	}

	ident := uniqueIdentifier(Identifier(up.Name), s.hasIdentifier)
	if err := s.engine.Register(ctx, ident, f); err != nil {
		return LoadEntry{FileName: up.Name, Status: LoadFailed, Err: err}
	}

	table := LoadedTable{
		FileName:   up.Name,
		Identifier: ident,
		RowCount:   f.NumRows(),
		Columns:    f.ColumnNames(),
	}
	s.tables = append(s.tables, table)
	return LoadEntry{FileName: up.Name, Status: LoadLoaded, Table: &table}
}
