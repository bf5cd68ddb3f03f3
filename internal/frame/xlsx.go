package frame

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first worksheet of a workbook. The first row is the
// header; cells beyond the header width get generated column names.
// Numbers are read unformatted and date-styled cells become dates or
// timestamps.
func ParseXLSX(data []byte) (*Frame, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: xlsxName, Err: err}
	}
	defer func() { _ = book.Close() }()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: xlsxName, Err: errors.New("workbook has no sheets")}
	}
	sheet := sheets[0]

	rows, err := book.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Format: xlsxName, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Format: xlsxName, Err: fmt.Errorf("sheet %q is empty", sheet)}
	}

	date1904 := false
	if props, err := book.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	dates := dateStyles{book: book, known: make(map[int]bool)}
	for r := 1; r < len(rows); r++ {
		for c, raw := range rows[r] {
			serial, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, &ParseError{Format: xlsxName, Err: err}
			}
			if dates.isDate(sheet, cell) {
				rows[r][c] = excelTime(serial, date1904)
			}
		}
	}

	header := rows[0]
	for _, row := range rows[1:] {
		for len(header) < len(row) {
			header = append(header, "")
		}
	}

	f, err := fromRecords(header, rows[1:])
	if err != nil {
		return nil, &ParseError{Format: xlsxName, Err: err}
	}
	return f, nil
}

// excelTime renders a date serial as a date, or as a timestamp when it has
// a time of day.
func excelTime(serial float64, date1904 bool) string {
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return strconv.FormatFloat(serial, 'f', -1, 64)
	}
	t = t.Round(time.Second)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format(dateLayout)
	}
	return t.Format(timestampLayout)
}

// dateStyles caches, per style id, whether a style's number format shows
// a date or time.
type dateStyles struct {
	book  *excelize.File
	known map[int]bool
}

func (d dateStyles) isDate(sheet, cell string) bool {
	id, err := d.book.GetCellStyle(sheet, cell)
	if err != nil || id == 0 {
		return false
	}
	if v, ok := d.known[id]; ok {
		return v
	}
	v := false
	if style, err := d.book.GetStyle(id); err == nil {
		v = isDateFormat(style)
	}
	d.known[id] = v
	return v
}

func isDateFormat(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	switch id := style.NumFmt; {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 45 && id <= 47, id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format contains date or
// time tokens outside quoted text and bracketed colors or conditions.
func isDateFormatCode(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case ch == '\\' && !inQuote:
			i++
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		case strings.IndexByte("yYmMdDhHsS", ch) >= 0:
			return true
		}
	}
	return false
}
