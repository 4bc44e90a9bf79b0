// Package source supplies raw feed bytes to the scanner one byte at a time
// while reading the underlying file in fixed-size chunks.
//
// Two implementations are provided:
//
//   - ChunkedSource: a single-buffer reader. Each refill blocks on the
//     underlying Read call. Simple and correct; the baseline strategy.
//   - PrefetchSource: a double-buffer reader. A background worker fills the
//     off buffer while the consumer drains the active one, overlapping disk
//     latency with CPU-bound scanning. The buffer swap is a bounded-wait
//     rendezvous: if the worker does not deliver the next chunk within the
//     configured timeout, the wait surfaces as a hard read error.
//
// Both deliver the identical byte stream; the prefetching variant only
// changes when the underlying reads happen. End of stream is reported as
// io.EOF and is idempotent. I/O failures, including worker failures, are
// reported (wrapped in errs.ErrReadFailed) on the byte request that first
// needs the failed chunk, and are sticky thereafter.
package source
