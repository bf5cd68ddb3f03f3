package frame

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when parsing a file whose extension has no parser.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format is one of the closed set of upload formats. The zero value is
// Unsupported.
type Format struct {
	name  string
	parse func(data []byte) (*Frame, error)
}

const (
	csvName     = "CSV"
	xlsxName    = "XLSX"
	jsonName    = "JSON"
	parquetName = "Parquet"
)

// Known formats.
var (
	Unsupported = Format{name: "unsupported"}
	CSV         = Format{name: csvName, parse: ParseCSV}
	XLSX        = Format{name: xlsxName, parse: ParseXLSX}
	JSON        = Format{name: jsonName, parse: ParseJSON}
	Parquet     = Format{name: parquetName, parse: ParseParquet}
)

var byExtension = map[string]Format{
	".csv":     CSV,
	".xlsx":    XLSX,
	".json":    JSON,
	".parquet": Parquet,
}

// FormatFor selects the format from the file name's extension, case-insensitively.
func FormatFor(fileName string) Format {
	if f, ok := byExtension[strings.ToLower(filepath.Ext(fileName))]; ok {
		return f
	}
	return Unsupported
}

// Extensions lists the accepted file extensions.
func Extensions() []string {
	return []string{".csv", ".xlsx", ".json", ".parquet"}
}

func (f Format) String() string {
	if f.name == "" {
		return Unsupported.name
	}
	return f.name
}

// Supported reports whether the format has a parser.
func (f Format) Supported() bool {
	return f.parse != nil
}

// Parse reads data as this format.
func (f Format) Parse(data []byte) (*Frame, error) {
	if f.parse == nil {
		return nil, ErrUnsupportedFormat
	}
	return f.parse(data)
}
