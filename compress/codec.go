package compress

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Type identifies a feed compression format.
type Type uint8

const (
	TypeNone Type = 0x1 // TypeNone represents an uncompressed feed.
	TypeGzip Type = 0x2 // TypeGzip represents a gzip-compressed feed.
	TypeZstd Type = 0x3 // TypeZstd represents a Zstandard-compressed feed.
	TypeS2   Type = 0x4 // TypeS2 represents an S2-compressed feed.
	TypeLZ4  Type = 0x5 // TypeLZ4 represents an LZ4 frame-compressed feed.
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeGzip:
		return "Gzip"
	case TypeZstd:
		return "Zstd"
	case TypeS2:
		return "S2"
	case TypeLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Codec wraps an underlying stream with compression-aware readers and writers.
//
// NewReader never buffers more than the codec's own window of input, so a
// multi-gigabyte compressed feed is consumed with bounded memory regardless
// of its decompressed size.
type Codec interface {
	// NewReader returns a reader that yields the decompressed byte stream
	// of r. The caller must Close it to release codec resources; closing
	// the reader does not close r.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// NewWriter returns a writer that compresses into w. The caller must
	// Close it to flush codec framing; closing the writer does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
}

var builtinCodecs = map[Type]Codec{
	TypeNone: NewNoOpCodec(),
	TypeGzip: NewGzipCodec(),
	TypeZstd: NewZstdCodec(),
	TypeS2:   NewS2Codec(),
	TypeLZ4:  NewLZ4Codec(),
}

// ForType retrieves the built-in Codec for the specified compression type.
func ForType(compressionType Type) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// DetectType maps a feed file path to its compression type by extension.
//
// Unrecognized or missing extensions report TypeNone, so a plain ".json"
// feed needs no special casing by the caller.
func DetectType(path string) Type {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return TypeGzip
	case ".zst", ".zstd":
		return TypeZstd
	case ".s2":
		return TypeS2
	case ".lz4":
		return TypeLZ4
	default:
		return TypeNone
	}
}
