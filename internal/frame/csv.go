package frame

import (
	"bytes"
	"encoding/csv"
	"errors"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ParseCSV reads comma-separated text with a header row. A byte order mark
// selects UTF-8 or UTF-16; without one the input is read as UTF-8.
func ParseCSV(data []byte) (*Frame, error) {
	decoded := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	// FieldsPerRecord 0 pins every record to the header's width.
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = 0

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Format: csvName, Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: csvName, Err: errors.New("no header row")}
	}

	f, err := fromRecords(records[0], records[1:])
	if err != nil {
		return nil, &ParseError{Format: csvName, Err: err}
	}
	return f, nil
}
