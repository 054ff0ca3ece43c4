// Package compress zstd-encodes column vectors and decodes them back under a
// size cap.
package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultMaxDecodedSize caps one decompressed column vector when no limit is given.
const DefaultMaxDecodedSize = 256 << 20

// ErrTooLarge is returned when a frame decodes to more than the decompressor limit.
var ErrTooLarge = errors.New("decompressed size exceeds limit")

// Compressor zstd-encodes column vectors. Safe for concurrent use.
type Compressor struct {
	encoder *zstd.Encoder
}

// NewCompressor creates a Compressor. Close it when done.
func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("compress: new encoder: %w", err)
	}
	return &Compressor{encoder: encoder}, nil
}

// Compress returns one zstd frame holding vector. An empty vector stays empty.
func (c *Compressor) Compress(vector []byte) []byte {
	if len(vector) == 0 {
		return []byte{}
	}
	return c.encoder.EncodeAll(vector, make([]byte, 0, len(vector)/2))
}

// Close releases the encoder.
func (c *Compressor) Close() error {
	return c.encoder.Close()
}

// Decompressor decodes zstd column vectors received from a peer.
// Safe for concurrent use.
type Decompressor struct {
	decoder *zstd.Decoder
	limit   uint64
}

// NewDecompressor creates a Decompressor that refuses to produce more than
// limit bytes per vector. A limit of 0 means DefaultMaxDecodedSize.
// Close it when done.
func NewDecompressor(limit uint64) (*Decompressor, error) {
	if limit == 0 {
		limit = DefaultMaxDecodedSize
	}
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("compress: new decoder: %w", err)
	}
	return &Decompressor{decoder: decoder, limit: limit}, nil
}

// Limit returns the maximum decoded size of one vector in bytes.
func (d *Decompressor) Limit() uint64 { return d.limit }

// Decompress decodes one vector. A frame declaring or producing more than
// the limit fails with ErrTooLarge.
func (d *Decompressor) Decompress(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return []byte{}, nil
	}
	vector, err := d.decoder.DecodeAll(frame, nil)
	switch {
	case errors.Is(err, zstd.ErrDecoderSizeExceeded), errors.Is(err, zstd.ErrWindowSizeExceeded):
		return nil, fmt.Errorf("compress: %w (%d bytes)", ErrTooLarge, d.limit)
	case err != nil:
		return nil, fmt.Errorf("compress: decode: %w", err)
	case uint64(len(vector)) > d.limit:
		return nil, fmt.Errorf("compress: %w (%d bytes)", ErrTooLarge, d.limit)
	}
	return vector, nil
}

// Close releases the decoder.
func (d *Decompressor) Close() {
	d.decoder.Close()
}
