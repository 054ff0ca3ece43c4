package wire

import (
	"fmt"
	"strconv"
)

// ColumnType tags the binary encoding of a result column buffer.
type ColumnType int32

const (
	ColumnInvalid ColumnType = iota
	ColumnBool
	ColumnInt8
	ColumnInt16
	ColumnInt32
	ColumnInt64
	ColumnFloat32
	ColumnFloat64
	ColumnVarchar
	ColumnPoint
	ColumnBox
	ColumnEmbedding
	ColumnRowID
)

var columnTypeNames = map[ColumnType]string{
	ColumnInvalid:   "Invalid",
	ColumnBool:      "Bool",
	ColumnInt8:      "Int8",
	ColumnInt16:     "Int16",
	ColumnInt32:     "Int32",
	ColumnInt64:     "Int64",
	ColumnFloat32:   "Float32",
	ColumnFloat64:   "Float64",
	ColumnVarchar:   "Varchar",
	ColumnPoint:     "Point",
	ColumnBox:       "Box",
	ColumnEmbedding: "Embedding",
	ColumnRowID:     "RowID",
}

// String returns the tag name, or the numeric tag for unknown values.
func (t ColumnType) String() string {
	if name, ok := columnTypeNames[t]; ok {
		return name
	}
	return "ColumnType(" + strconv.Itoa(int(t)) + ")"
}

// Width returns the element width in bytes for fixed-width types.
// Returns 0 for variable-width or undecodable types.
func (t ColumnType) Width() int {
	switch t {
	case ColumnBool, ColumnInt8:
		return 1
	case ColumnInt16:
		return 2
	case ColumnInt32, ColumnFloat32:
		return 4
	case ColumnInt64, ColumnFloat64:
		return 8
	case ColumnPoint:
		return 16
	case ColumnBox:
		return 32
	default:
		return 0
	}
}

// Compression identifies how a column vector is compressed on the wire.
type Compression int8

const (
	CompressionNone Compression = iota
	CompressionZstd
)

// ColumnDef describes one result column.
type ColumnDef struct {
	// ID indexes Response.ColumnFields.
	ID   int        `msgpack:"id"`
	Name string     `msgpack:"name"`
	Type ColumnType `msgpack:"column_type"`
}

// ColumnField carries the raw buffer of one result column.
type ColumnField struct {
	Type        ColumnType  `msgpack:"column_type"`
	Vector      []byte      `msgpack:"column_vector"`
	Compression Compression `msgpack:"compression,omitempty"`
}

// Engine error codes reported in Response.ErrorCode.
const (
	ErrorCodeOK             = 0
	ErrorCodeInvalidRequest = 3001
	ErrorCodeTableNotFound  = 3022
	ErrorCodeExecution      = 7000
)

// Failure builds a response carrying only an engine error.
func Failure(code int, format string, args ...any) *Response {
	return &Response{ErrorCode: code, ErrorMessage: fmt.Sprintf(format, args...)}
}

// Response is the inbound select reply.
type Response struct {
	// ErrorCode is zero on success.
	ErrorCode    int           `msgpack:"error_code"`
	ErrorMessage string        `msgpack:"error_msg,omitempty"`
	ColumnDefs   []ColumnDef   `msgpack:"column_defs"`
	ColumnFields []ColumnField `msgpack:"column_fields"`
}
