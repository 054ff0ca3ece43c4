package result

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/paulmach/orb"

	"github.com/hugr-lab/infinity-go/internal/compress"
	"github.com/hugr-lab/infinity-go/wire"
)

// varcharPrefix is the width of the length prefix of one varchar run.
const varcharPrefix = 4

// Options configures a Decoder.
type Options struct {
	// Logger for decode diagnostics.
	// OPTIONAL: Uses slog.Default() if nil.
	Logger *slog.Logger

	// MaxColumnSize caps the decompressed size of one column buffer in bytes.
	// OPTIONAL: Uses DefaultMaxColumnSize if 0.
	MaxColumnSize uint64
}

// DefaultMaxColumnSize is the decompressed size cap used when
// Options.MaxColumnSize is 0.
const DefaultMaxColumnSize = compress.DefaultMaxDecodedSize

// Decoder converts response envelopes into Results.
// Safe for concurrent use; call Close when done.
type Decoder struct {
	decompressor *compress.Decompressor
	logger       *slog.Logger
}

// NewDecoder creates a Decoder. If opts is nil, default options are used.
func NewDecoder(opts *Options) (*Decoder, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d, err := compress.NewDecompressor(opts.MaxColumnSize)
	if err != nil {
		return nil, fmt.Errorf("result: %w", err)
	}
	return &Decoder{decompressor: d, logger: logger}, nil
}

// Close releases decoder resources.
func (d *Decoder) Close() {
	d.decompressor.Close()
}

var defaultDecoder = sync.OnceValues(func() (*Decoder, error) {
	return NewDecoder(nil)
})

// Decode decodes resp with a shared default Decoder.
func Decode(resp *wire.Response) (*Result, error) {
	d, err := defaultDecoder()
	if err != nil {
		return nil, err
	}
	return d.Decode(resp)
}

// Decode decodes every column of resp in declaration order. All columns must
// hold the same number of rows.
// Any failure aborts the decode and no Result is returned.
func (d *Decoder) Decode(resp *wire.Response) (*Result, error) {
	if resp == nil {
		return nil, fmt.Errorf("result: nil response")
	}

	res := newResult(len(resp.ColumnDefs))
	wantRows := -1
	for _, def := range resp.ColumnDefs {
		if def.ID < 0 || def.ID >= len(resp.ColumnFields) {
			return nil, &FieldIndexError{Column: def.Name, ID: def.ID, Max: len(resp.ColumnFields)}
		}
		field := resp.ColumnFields[def.ID]

		typ := field.Type
		if typ == wire.ColumnInvalid {
			typ = def.Type
		}

		buf := field.Vector
		if field.Compression == wire.CompressionZstd {
			var err error
			buf, err = d.decompressor.Decompress(field.Vector)
			if errors.Is(err, compress.ErrTooLarge) {
				return nil, &BufferError{
					Column: def.Name, Type: typ, Length: len(field.Vector), Offset: -1,
					Reason: fmt.Sprintf("decompressed size exceeds limit of %d bytes", d.decompressor.Limit()),
				}
			}
			if err != nil {
				return nil, fmt.Errorf("result: column %q: %w", def.Name, err)
			}
		}

		values, rows, err := DecodeVector(def.Name, typ, buf)
		if err != nil {
			return nil, err
		}
		if wantRows < 0 {
			wantRows = rows
		} else if rows != wantRows {
			return nil, &BufferError{
				Column: def.Name, Type: typ, Length: len(buf), Width: typ.Width(), Offset: -1,
				Reason: fmt.Sprintf("row count mismatch: %d rows, want %d", rows, wantRows),
			}
		}

		d.logger.Debug("Decoded column",
			"column", def.Name,
			"type", typ.String(),
			"bytes", len(buf),
			"rows", rows,
		)

		res.set(Column{Name: def.Name, Type: typ, Values: values, Rows: rows})
	}
	return res, nil
}

// DecodeVector decodes one uncompressed column buffer. It returns the typed
// slice and its row count. name is used for error context only.
func DecodeVector(name string, typ wire.ColumnType, buf []byte) (any, int, error) {
	if typ == wire.ColumnVarchar {
		values, err := decodeVarchar(name, buf)
		if err != nil {
			return nil, 0, err
		}
		return values, len(values), nil
	}

	width := typ.Width()
	if width == 0 {
		return nil, 0, &ColumnTypeError{Column: name, Type: typ}
	}
	if len(buf)%width != 0 {
		return nil, 0, &BufferError{Column: name, Type: typ, Length: len(buf), Width: width}
	}
	n := len(buf) / width

	switch typ {
	case wire.ColumnBool:
		values := make([]bool, n)
		for i := range values {
			values[i] = buf[i] != 0
		}
		return values, n, nil

	case wire.ColumnInt8:
		values := make([]int8, n)
		for i := range values {
			values[i] = int8(buf[i])
		}
		return values, n, nil

	case wire.ColumnInt16:
		values := make([]int16, n)
		for i := range values {
			values[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
		}
		return values, n, nil

	case wire.ColumnInt32:
		values := make([]int32, n)
		for i := range values {
			values[i] = int32(binary.LittleEndian.Uint32(buf[i*4:]))
		}
		return values, n, nil

	case wire.ColumnInt64:
		values := make([]int64, n)
		for i := range values {
			values[i] = int64(binary.LittleEndian.Uint64(buf[i*8:]))
		}
		return values, n, nil

	case wire.ColumnFloat32:
		values := make([]float32, n)
		for i := range values {
			values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}
		return values, n, nil

	case wire.ColumnFloat64:
		values := make([]float64, n)
		for i := range values {
			values[i] = readFloat64(buf, i)
		}
		return values, n, nil

	case wire.ColumnPoint:
		values := make([]orb.Point, n)
		for i := range values {
			values[i] = orb.Point{readFloat64(buf, i*2), readFloat64(buf, i*2+1)}
		}
		return values, n, nil

	case wire.ColumnBox:
		// upper-left x, y then lower-right x, y
		values := make([]orb.Bound, n)
		for i := range values {
			ulx, uly := readFloat64(buf, i*4), readFloat64(buf, i*4+1)
			lrx, lry := readFloat64(buf, i*4+2), readFloat64(buf, i*4+3)
			values[i] = orb.Bound{
				Min: orb.Point{math.Min(ulx, lrx), math.Min(uly, lry)},
				Max: orb.Point{math.Max(ulx, lrx), math.Max(uly, lry)},
			}
		}
		return values, n, nil

	default:
		return nil, 0, &ColumnTypeError{Column: name, Type: typ}
	}
}

// readFloat64 reads the i-th little-endian double of buf.
func readFloat64(buf []byte, i int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
}

// decodeVarchar reads runs of a little-endian uint32 length followed by that
// many bytes of UTF-8 text.
func decodeVarchar(name string, buf []byte) ([]string, error) {
	values := make([]string, 0)
	for off := 0; off < len(buf); {
		if len(buf)-off < varcharPrefix {
			return nil, &BufferError{Column: name, Type: wire.ColumnVarchar, Length: len(buf), Offset: off, Reason: "truncated length prefix"}
		}
		n := int(binary.LittleEndian.Uint32(buf[off:]))
		start := off + varcharPrefix
		if n > len(buf)-start {
			return nil, &BufferError{Column: name, Type: wire.ColumnVarchar, Length: len(buf), Offset: off, Reason: fmt.Sprintf("value of %d bytes overruns buffer", n)}
		}
		text := buf[start : start+n]
		if !utf8.Valid(text) {
			return nil, &BufferError{Column: name, Type: wire.ColumnVarchar, Length: len(buf), Offset: off, Reason: "invalid UTF-8"}
		}
		values = append(values, string(text))
		off = start + n
	}
	return values, nil
}
