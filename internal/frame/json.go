package frame

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// ParseJSON reads either an array of records or an object of columns.
//
//	[{"id": 1, "name": "a"}, {"id": 2, "name": "b"}]
//	{"id": [1, 2], "name": ["a", "b"]}
//	{"id": {"0": 1, "1": 2}, "name": {"0": "a", "1": "b"}}
//
// Records may omit keys; missing values are NULL.
func ParseJSON(data []byte) (*Frame, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Format: jsonName, Err: errors.New("malformed document")}
	}

	root := gjson.ParseBytes(data)
	var (
		f   *Frame
		err error
	)
	switch {
	case root.IsArray():
		f, err = fromRecordArray(root)
	case root.IsObject():
		f, err = fromColumnObject(root)
	default:
		err = errors.New("top-level value must be an array of records or an object of columns")
	}
	if err != nil {
		return nil, &ParseError{Format: jsonName, Err: err}
	}
	return f, nil
}

// jsonTable collects cells keyed by column and row label, keeping
// first-seen order for both.
type jsonTable struct {
	columns  []string
	colIndex map[string]int
	labels   []string
	rowIndex map[string]int
	cells    map[[2]int]gjson.Result
}

func newJSONTable() *jsonTable {
	return &jsonTable{
		colIndex: make(map[string]int),
		rowIndex: make(map[string]int),
		cells:    make(map[[2]int]gjson.Result),
	}
}

func (t *jsonTable) set(column, label string, value gjson.Result) {
	c, ok := t.colIndex[column]
	if !ok {
		c = len(t.columns)
		t.colIndex[column] = c
		t.columns = append(t.columns, column)
	}
	r, ok := t.rowIndex[label]
	if !ok {
		r = len(t.labels)
		t.rowIndex[label] = r
		t.labels = append(t.labels, label)
	}
	t.cells[[2]int{r, c}] = value
}

func fromRecordArray(root gjson.Result) (*Frame, error) {
	t := newJSONTable()
	var err error
	i := 0
	root.ForEach(func(_, record gjson.Result) bool {
		if !record.IsObject() {
			err = fmt.Errorf("record %d is not an object", i)
			return false
		}
		label := strconv.Itoa(i)
		// Reserve the row even when the record is empty.
		if _, ok := t.rowIndex[label]; !ok {
			t.rowIndex[label] = len(t.labels)
			t.labels = append(t.labels, label)
		}
		record.ForEach(func(key, value gjson.Result) bool {
			t.set(key.String(), label, value)
			return true
		})
		i++
		return true
	})
	if err != nil {
		return nil, err
	}
	return t.frame()
}

func fromColumnObject(root gjson.Result) (*Frame, error) {
	t := newJSONTable()
	var err error
	root.ForEach(func(key, column gjson.Result) bool {
		name := key.String()
		switch {
		case column.IsArray():
			i := 0
			column.ForEach(func(_, value gjson.Result) bool {
				t.set(name, strconv.Itoa(i), value)
				i++
				return true
			})
		case column.IsObject():
			column.ForEach(func(label, value gjson.Result) bool {
				t.set(name, label.String(), value)
				return true
			})
		default:
			err = fmt.Errorf("column %q is not an array or object", name)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return t.frame()
}

func (t *jsonTable) frame() (*Frame, error) {
	names := uniqueHeaders(t.columns)
	f := &Frame{
		Columns: make([]Column, len(names)),
		Rows:    make([][]any, len(t.labels)),
	}
	for r := range f.Rows {
		f.Rows[r] = make([]any, len(names))
	}

	column := make([]gjson.Result, len(t.labels))
	for c, name := range names {
		for r := range t.labels {
			column[r] = t.cells[[2]int{r, c}]
		}
		typ := jsonColumnType(column)
		f.Columns[c] = Column{Name: name, Type: typ}
		for r, v := range column {
			f.Rows[r][c] = jsonValue(v, typ)
		}
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// jsonColumnType maps the JSON kinds present in a column to one type.
// Mixed kinds become VARCHAR.
func jsonColumnType(values []gjson.Result) Type {
	var total, ints, floats, bools, texts int
	for _, v := range values {
		switch v.Type {
		case gjson.Null:
			continue
		case gjson.Number:
			if _, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				ints++
			} else {
				floats++
			}
		case gjson.True, gjson.False:
			bools++
		default:
			texts++
		}
		total++
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
	default:
		return TypeVarchar
	}
}

func jsonValue(v gjson.Result, t Type) any {
	if v.Type == gjson.Null {
		return nil
	}
	switch t {
	case TypeBigint:
		return v.Int()
	case TypeDouble:
		return v.Float()
	case TypeBoolean:
		return v.Bool()
	}
	if v.Type == gjson.JSON {
		return v.Raw
	}
	return v.String()
}
