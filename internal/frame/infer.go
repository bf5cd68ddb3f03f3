package frame

import (
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// nullTokens are cell texts read as NULL regardless of column type.
var nullTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"NULL": {},
	"null": {},
	"NaN":  {},
	"nan":  {},
}

func isNull(value string) bool {
	_, ok := nullTokens[strings.TrimSpace(value)]
	return ok
}

// inferType picks the narrowest type every non-null value in a column fits.
func inferType(values []string) Type {
	var total, ints, floats, bools, dates, stamps int
	for _, raw := range values {
		if isNull(raw) {
			continue
		}
		value := strings.TrimSpace(raw)
		total++

		if _, err := strconv.ParseInt(value, 10, 64); err == nil {
			ints++
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			floats++
			continue
		}
		if _, ok := parseBool(value); ok {
			bools++
			continue
		}
		if _, err := time.Parse(dateLayout, value); err == nil {
			dates++
			continue
		}
		if _, err := time.Parse(timestampLayout, value); err == nil {
			stamps++
		}
	}

	switch {
	case total == 0:
		return TypeVarchar
	case ints == total:
		return TypeBigint
	case ints+floats == total:
		return TypeDouble
	case bools == total:
		return TypeBoolean
	case dates == total:
		return TypeDate
	case dates+stamps == total:
		return TypeTimestamp
	default:
		return TypeVarchar
	}
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(value) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// convertCell converts a cell's text to the Go value for its column type.
func convertCell(raw string, t Type) any {
	if isNull(raw) {
		return nil
	}
	value := strings.TrimSpace(raw)

	switch t {
	case TypeBigint:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	case TypeDouble:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case TypeBoolean:
		if b, ok := parseBool(value); ok {
			return b
		}
	case TypeDate:
		if d, err := time.Parse(dateLayout, value); err == nil {
			return d
		}
	case TypeTimestamp:
		if ts, err := time.Parse(timestampLayout, value); err == nil {
			return ts
		}
		if d, err := time.Parse(dateLayout, value); err == nil {
			return d
		}
	}
	return raw
}

// fromRecords builds a Frame from a header and string records, inferring
// each column's type. Records shorter than the header are padded with NULL.
func fromRecords(header []string, records [][]string) (*Frame, error) {
	names := uniqueHeaders(header)
	f := &Frame{
		Columns: make([]Column, len(names)),
		Rows:    make([][]any, len(records)),
	}

	column := make([]string, len(records))
	for c, name := range names {
		for r, rec := range records {
			if c < len(rec) {
				column[r] = rec[c]
			} else {
				column[r] = ""
			}
		}
		f.Columns[c] = Column{Name: name, Type: inferType(column)}
	}

	for r, rec := range records {
		row := make([]any, len(names))
		for c := range names {
			if c < len(rec) {
				row[c] = convertCell(rec[c], f.Columns[c].Type)
			}
		}
		f.Rows[r] = row
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}
