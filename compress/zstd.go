package compress

// ZstdCodec reads and writes Zstandard-framed feed streams.
//
// Two implementations exist behind build tags:
//   - zstd_cgo.go: valyala/gozstd, backed by the reference C library.
//     Selected when cgo is available.
//   - zstd_pure.go: klauspost/compress/zstd, pure Go. Selected for
//     cross-compiled or CGO_ENABLED=0 builds.
//
// Both produce and consume standard zstd frames, so feeds written by one
// are readable by the other.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstandard codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
