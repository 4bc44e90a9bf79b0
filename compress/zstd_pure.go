//go:build !cgo

package compress

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// NewReader returns a decompressing reader over r.
//
// Decoder concurrency is pinned to 1: the scanner consumes the stream
// byte-by-byte from a single goroutine, so extra decoder goroutines only
// add scheduling overhead.
func (c ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(false),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}

	return decoder.IOReadCloser(), nil
}

// NewWriter returns a compressing writer into w at the default speed level.
func (c ZstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	encoder, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}

	return encoder, nil
}
