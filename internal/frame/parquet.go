package frame

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// ParseParquet reads every row group of a Parquet file. Arrow types without
// a direct engine counterpart are kept as their string form.
func ParseParquet(data []byte) (f *Frame, err error) {
	// The arrow readers panic on some truncated inputs.
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, &ParseError{Format: parquetName, Err: fmt.Errorf("corrupt file: %v", r)}
		}
	}()

	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(data),
		parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, &ParseError{Format: parquetName, Err: err}
	}
	defer tbl.Release()

	schema := tbl.Schema()
	ncols := int(tbl.NumCols())
	nrows := int(tbl.NumRows())

	f = &Frame{
		Columns: make([]Column, ncols),
		Rows:    make([][]any, nrows),
	}
	for r := range f.Rows {
		f.Rows[r] = make([]any, ncols)
	}

	for c := 0; c < ncols; c++ {
		field := schema.Field(c)
		f.Columns[c] = Column{Name: field.Name, Type: arrowType(field.Type)}

		r := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				f.Rows[r][c] = arrowValue(chunk, i)
				r++
			}
		}
	}

	names := uniqueHeaders(f.ColumnNames())
	for c := range f.Columns {
		f.Columns[c].Name = names[c]
	}

	if err := f.validate(); err != nil {
		return nil, &ParseError{Format: parquetName, Err: err}
	}
	return f, nil
}

func arrowType(dt arrow.DataType) Type {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return TypeBigint
	case arrow.UINT64, arrow.FLOAT32, arrow.FLOAT64:
		return TypeDouble
	case arrow.BOOL:
		return TypeBoolean
	case arrow.DATE32, arrow.DATE64:
		return TypeDate
	case arrow.TIMESTAMP:
		return TypeTimestamp
	default:
		return TypeVarchar
	}
}

// arrowValue returns the Go value for one cell. It must agree with arrowType.
func arrowValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint64:
		return float64(a.Value(i))
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Date32:
		return a.Value(i).ToTime()
	case *array.Date64:
		return a.Value(i).ToTime()
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit)
	}
	return arr.ValueStr(i)
}
