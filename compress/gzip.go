package compress

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

// GzipCodec reads and writes gzip-framed feed streams.
//
// Gzip is the format most tracking-feed producers ship, so this codec is
// the one DetectType selects for the common ".json.gz" export.
type GzipCodec struct{}

var _ Codec = (*GzipCodec)(nil)

// NewGzipCodec creates a new gzip codec.
func NewGzipCodec() GzipCodec {
	return GzipCodec{}
}

// NewReader returns a decompressing reader over r.
//
// The gzip header is read eagerly, so a truncated or non-gzip input fails
// here rather than on the first Read.
func (c GzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// NewWriter returns a compressing writer into w using the default level.
func (c GzipCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}
