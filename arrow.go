package dbsql

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// arrowSchema maps the result schema onto an Arrow schema. Types without a
// direct mapping are carried as strings.
func (rs *ResultSet) arrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, len(rs.Schema))
	for _, fs := range rs.Schema {
		var typ arrow.DataType
		switch fs.Type {
		case ByteDataType, ShortDataType, IntDataType, LongDataType:
			typ = arrow.PrimitiveTypes.Int64
		case FloatDataType, DoubleDataType:
			typ = arrow.PrimitiveTypes.Float64
		case BooleanDataType:
			typ = arrow.FixedWidthTypes.Boolean
		default:
			typ = arrow.BinaryTypes.String
		}
		fields = append(fields, arrow.Field{Name: fs.Name, Type: typ, Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

// ToArrowRecord reads the result set and returns the rows as a single Arrow record.
//
// The caller must Release the returned record.
func (rs *ResultSet) ToArrowRecord() (arrow.Record, error) {
	schema := rs.arrowSchema()
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for _, r := range rs.rows {
		if len(r) != len(rs.Schema) {
			return nil, errors.New("schema length does not match record length")
		}
		for i, v := range r {
			if err := appendArrowValue(b.Field(i), v); err != nil {
				return nil, fmt.Errorf("column %s: %w", rs.Schema[i].Name, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendArrowValue(fb array.Builder, v *string) error {
	if v == nil {
		fb.AppendNull()
		return nil
	}

	switch fb := fb.(type) {
	case *array.Int64Builder:
		n, err := strconv.ParseInt(*v, 10, 64)
		if err != nil {
			return err
		}
		fb.Append(n)
	case *array.Float64Builder:
		f, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			return err
		}
		fb.Append(f)
	case *array.BooleanBuilder:
		ok, err := strconv.ParseBool(*v)
		if err != nil {
			return err
		}
		fb.Append(ok)
	case *array.StringBuilder:
		fb.Append(*v)
	default:
		return fmt.Errorf("unsupported builder %T", fb)
	}
	return nil
}

// WriteArrowIPC writes the result set to w as an Arrow IPC stream.
func (rs *ResultSet) WriteArrowIPC(w io.Writer) (err error) {
	rec, err := rs.ToArrowRecord()
	if err != nil {
		return err
	}
	defer rec.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()))
	defer func() {
		err = errors.Join(err, writer.Close())
	}()

	return writer.Write(rec)
}
