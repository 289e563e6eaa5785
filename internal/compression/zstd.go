// Package compression provides the zstd decompression adapter for
// uploaded payloads.
package compression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DecompressionError wraps any failure to decompress a payload. Corrupt
// frames, truncated streams, and unsupported formats all surface as
// this one kind; there is no partial recovery.
type DecompressionError struct {
	Err error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("decompress payload: %v", e.Err)
}

func (e *DecompressionError) Unwrap() error { return e.Err }

// Decompressor wraps a shared zstd decoder. The underlying decoder is
// safe for concurrent use, so one Decompressor serves all requests.
type Decompressor struct {
	dec *zstd.Decoder
}

// NewDecompressor initializes the zstd decoder. Call once at startup
// and inject the result; the decoder must exist before the first
// request is served.
func NewDecompressor() (*Decompressor, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("init zstd decoder: %w", err)
	}
	return &Decompressor{dec: dec}, nil
}

// Decompress returns the uncompressed form of data, or a
// *DecompressionError if the payload is unreadable.
func (d *Decompressor) Decompress(data []byte) ([]byte, error) {
	out, err := d.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, &DecompressionError{Err: err}
	}
	return out, nil
}

// Close releases the decoder. The Decompressor must not be used
// afterwards.
func (d *Decompressor) Close() {
	d.dec.Close()
}
