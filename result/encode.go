package result

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/hugr-lab/infinity-go/internal/compress"
	"github.com/hugr-lab/infinity-go/wire"
)

// VectorBuilder accumulates values of one column type into the
// little-endian column buffer layout read by DecodeVector.
type VectorBuilder struct {
	typ  wire.ColumnType
	buf  []byte
	rows int
}

// NewVectorBuilder creates a builder for typ.
func NewVectorBuilder(typ wire.ColumnType) (*VectorBuilder, error) {
	if typ != wire.ColumnVarchar && typ.Width() == 0 {
		return nil, &ColumnTypeError{Type: typ}
	}
	return &VectorBuilder{typ: typ}, nil
}

// Type returns the column type of the builder.
func (b *VectorBuilder) Type() wire.ColumnType { return b.typ }

// Rows returns the number of appended values.
func (b *VectorBuilder) Rows() int { return b.rows }

// Bytes returns the encoded buffer.
func (b *VectorBuilder) Bytes() []byte { return b.buf }

// Append adds one value. The Go type must match the column type;
// integer and float columns also accept any wider Go integer or float
// that converts without a type change. A nil value appends the zero value.
func (b *VectorBuilder) Append(v any) error {
	if v == nil {
		return b.appendZero()
	}

	switch b.typ {
	case wire.ColumnBool:
		x, ok := v.(bool)
		if !ok {
			return b.mismatch(v)
		}
		if x {
			b.buf = append(b.buf, 1)
		} else {
			b.buf = append(b.buf, 0)
		}

	case wire.ColumnInt8, wire.ColumnInt16, wire.ColumnInt32, wire.ColumnInt64:
		x, ok := asInt64(v)
		if !ok {
			return b.mismatch(v)
		}
		b.appendInt(x)

	case wire.ColumnFloat32:
		x, ok := asFloat64(v)
		if !ok {
			return b.mismatch(v)
		}
		b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(float32(x)))

	case wire.ColumnFloat64:
		x, ok := asFloat64(v)
		if !ok {
			return b.mismatch(v)
		}
		b.appendFloat64(x)

	case wire.ColumnVarchar:
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case []byte:
			s = string(x)
		default:
			return b.mismatch(v)
		}
		b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(len(s)))
		b.buf = append(b.buf, s...)

	case wire.ColumnPoint:
		p, ok := v.(orb.Point)
		if !ok {
			return b.mismatch(v)
		}
		b.appendFloat64(p[0])
		b.appendFloat64(p[1])

	case wire.ColumnBox:
		bound, ok := v.(orb.Bound)
		if !ok {
			return b.mismatch(v)
		}
		// upper-left then lower-right
		b.appendFloat64(bound.Min[0])
		b.appendFloat64(bound.Max[1])
		b.appendFloat64(bound.Max[0])
		b.appendFloat64(bound.Min[1])
	}

	b.rows++
	return nil
}

func (b *VectorBuilder) appendZero() error {
	if b.typ == wire.ColumnVarchar {
		b.buf = binary.LittleEndian.AppendUint32(b.buf, 0)
	} else {
		b.buf = append(b.buf, make([]byte, b.typ.Width())...)
	}
	b.rows++
	return nil
}

func (b *VectorBuilder) appendInt(x int64) {
	switch b.typ {
	case wire.ColumnInt8:
		b.buf = append(b.buf, byte(int8(x)))
	case wire.ColumnInt16:
		b.buf = binary.LittleEndian.AppendUint16(b.buf, uint16(int16(x)))
	case wire.ColumnInt32:
		b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(int32(x)))
	default:
		b.buf = binary.LittleEndian.AppendUint64(b.buf, uint64(x))
	}
}

func (b *VectorBuilder) appendFloat64(x float64) {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, math.Float64bits(x))
}

func (b *VectorBuilder) mismatch(v any) error {
	return fmt.Errorf("result: cannot append %T to %s column", v, b.typ)
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// EncoderOptions configures an Encoder.
type EncoderOptions struct {
	// Compress stores column buffers zstd-compressed.
	Compress bool
}

// Encoder assembles a response envelope column by column.
// Not safe for concurrent use.
type Encoder struct {
	compressor *compress.Compressor
	resp       wire.Response
}

// NewEncoder creates an Encoder. If opts is nil, buffers are stored raw.
func NewEncoder(opts *EncoderOptions) (*Encoder, error) {
	e := &Encoder{}
	if opts != nil && opts.Compress {
		c, err := compress.NewCompressor()
		if err != nil {
			return nil, fmt.Errorf("result: %w", err)
		}
		e.compressor = c
	}
	return e, nil
}

// AddVector appends a column built with a VectorBuilder.
func (e *Encoder) AddVector(name string, b *VectorBuilder) {
	field := wire.ColumnField{Type: b.typ, Vector: b.Bytes()}
	if e.compressor != nil {
		field.Vector = e.compressor.Compress(field.Vector)
		field.Compression = wire.CompressionZstd
	}
	e.resp.ColumnDefs = append(e.resp.ColumnDefs, wire.ColumnDef{
		ID:   len(e.resp.ColumnFields),
		Name: name,
		Type: b.typ,
	})
	e.resp.ColumnFields = append(e.resp.ColumnFields, field)
}

// Add appends a column from a typed slice, e.g. []int32 for an Int32 column.
func (e *Encoder) Add(name string, typ wire.ColumnType, values any) error {
	b, err := NewVectorBuilder(typ)
	if err != nil {
		return err
	}
	if err := appendSlice(b, values); err != nil {
		return fmt.Errorf("result: column %q: %w", name, err)
	}
	e.AddVector(name, b)
	return nil
}

func appendSlice(b *VectorBuilder, values any) error {
	switch vs := values.(type) {
	case []bool:
		return appendAll(b, vs)
	case []int8:
		return appendAll(b, vs)
	case []int16:
		return appendAll(b, vs)
	case []int32:
		return appendAll(b, vs)
	case []int64:
		return appendAll(b, vs)
	case []float32:
		return appendAll(b, vs)
	case []float64:
		return appendAll(b, vs)
	case []string:
		return appendAll(b, vs)
	case []orb.Point:
		return appendAll(b, vs)
	case []orb.Bound:
		return appendAll(b, vs)
	case []any:
		return appendAll(b, vs)
	default:
		return fmt.Errorf("unsupported slice type %T", values)
	}
}

func appendAll[T any](b *VectorBuilder, values []T) error {
	for _, v := range values {
		if err := b.Append(v); err != nil {
			return err
		}
	}
	return nil
}

// Response returns the assembled envelope with a zero error code.
func (e *Encoder) Response() *wire.Response {
	resp := e.resp
	return &resp
}

// Close releases encoder resources.
func (e *Encoder) Close() error {
	if e.compressor != nil {
		return e.compressor.Close()
	}
	return nil
}
