package rpc

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/grpc/encoding"

	"github.com/hugr-lab/infinity-go/wire"
)

// CodecName is the gRPC content subtype of the msgpack codec.
const CodecName = "msgpack"

func init() {
	encoding.RegisterCodec(Codec{})
}

// Codec marshals wire requests and responses with msgpack.
// Other values fall back to plain msgpack encoding.
type Codec struct{}

// Marshal implements encoding.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case *wire.SelectRequest:
		return wire.MarshalRequest(m)
	case *wire.Response:
		return wire.MarshalResponse(m)
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpc: marshal %T: %w", v, err)
	}
	return data, nil
}

// Unmarshal implements encoding.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case *wire.SelectRequest:
		req, err := wire.UnmarshalRequest(data)
		if err != nil {
			return err
		}
		*m = *req
		return nil
	case *wire.Response:
		resp, err := wire.UnmarshalResponse(data)
		if err != nil {
			return err
		}
		*m = *resp
		return nil
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc: unmarshal %T: %w", v, err)
	}
	return nil
}

// Name implements encoding.Codec.
func (Codec) Name() string { return CodecName }
