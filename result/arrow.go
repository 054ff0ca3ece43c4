package result

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/hugr-lab/infinity-go/wire"
)

// GeometryExtensionName marks WKB geometry columns in Arrow field metadata.
const GeometryExtensionName = "geoarrow.wkb"

// ArrowType returns the Arrow storage type of a column type.
// Point and Box columns are stored as WKB binary.
func ArrowType(typ wire.ColumnType) (arrow.DataType, error) {
	switch typ {
	case wire.ColumnBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case wire.ColumnInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case wire.ColumnInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case wire.ColumnInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case wire.ColumnInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case wire.ColumnFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case wire.ColumnFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case wire.ColumnVarchar:
		return arrow.BinaryTypes.String, nil
	case wire.ColumnPoint, wire.ColumnBox:
		return arrow.BinaryTypes.Binary, nil
	}
	return nil, &ColumnTypeError{Type: typ}
}

// Schema returns the Arrow schema of the result.
func (r *Result) Schema() (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(r.columns))
	for _, c := range r.columns {
		dt, err := ArrowType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("result: column %q: %w", c.Name, err)
		}
		field := arrow.Field{Name: c.Name, Type: dt}
		if c.Type == wire.ColumnPoint || c.Type == wire.ColumnBox {
			field.Metadata = arrow.MetadataFrom(map[string]string{
				"ARROW:extension:name": GeometryExtensionName,
				"column_type":          c.Type.String(),
			})
		}
		fields = append(fields, field)
	}
	return arrow.NewSchema(fields, nil), nil
}

// Record converts the result into an Arrow record allocated from mem.
// If mem is nil, memory.DefaultAllocator is used. The caller must Release it.
func (r *Result) Record(mem memory.Allocator) (arrow.RecordBatch, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	schema, err := r.Schema()
	if err != nil {
		return nil, err
	}

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i, c := range r.columns {
		if err := appendArrow(builder.Field(i), c); err != nil {
			return nil, fmt.Errorf("result: column %q: %w", c.Name, err)
		}
	}
	return builder.NewRecordBatch(), nil
}

func appendArrow(b array.Builder, c Column) error {
	switch vs := c.Values.(type) {
	case []bool:
		b.(*array.BooleanBuilder).AppendValues(vs, nil)
	case []int8:
		b.(*array.Int8Builder).AppendValues(vs, nil)
	case []int16:
		b.(*array.Int16Builder).AppendValues(vs, nil)
	case []int32:
		b.(*array.Int32Builder).AppendValues(vs, nil)
	case []int64:
		b.(*array.Int64Builder).AppendValues(vs, nil)
	case []float32:
		b.(*array.Float32Builder).AppendValues(vs, nil)
	case []float64:
		b.(*array.Float64Builder).AppendValues(vs, nil)
	case []string:
		b.(*array.StringBuilder).AppendValues(vs, nil)
	case []orb.Point:
		bb := b.(*array.BinaryBuilder)
		for _, p := range vs {
			data, err := wkb.Marshal(p)
			if err != nil {
				return err
			}
			bb.Append(data)
		}
	case []orb.Bound:
		bb := b.(*array.BinaryBuilder)
		for _, bound := range vs {
			data, err := wkb.Marshal(bound.ToPolygon())
			if err != nil {
				return err
			}
			bb.Append(data)
		}
	default:
		return fmt.Errorf("unsupported values %T", c.Values)
	}
	return nil
}
