// Package compress provides streaming codecs for reading compressed
// tracking-event feed files.
//
// Feed producers commonly ship the daily event export compressed. Rather
// than requiring an out-of-band unpack step, the scanner wraps the feed
// file with one of these codecs and consumes decompressed bytes directly.
//
// Supported formats:
//   - None: plain JSON feed (pass-through)
//   - Gzip: the most common producer format (.gz)
//   - Zstd: best ratio/speed balance (.zst, .zstd)
//   - S2:   fastest decompression (.s2)
//   - LZ4:  lz4 frame format (.lz4)
//
// The usual entry point is DetectType, which maps a feed path's extension
// to a codec type, followed by ForType:
//
//	codec, err := compress.ForType(compress.DetectType(path))
//	rc, err := codec.NewReader(file)
//	defer rc.Close()
//
// Writers are provided for the same formats so tooling and tests can
// produce compressed feeds with the exact codecs the scanner reads.
package compress
