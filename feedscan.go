// Package feedscan provides a fast, allocation-disciplined scanner for
// postal-tracking event feeds.
//
// A feed is one very large JSON document: a single top-level object whose
// "events" member holds an array of hundreds of thousands of small event
// objects. Only two string fields per event matter, the Intelligent Mail
// barcode ("imb") and the processing phase ("mailPhase"); everything
// else is skipped cheaply. The scanner streams the file in chunks, never
// materializes the document, and holds at most one event's worth of output
// at a time, so memory use is constant regardless of feed size.
//
// # Core Features
//
//   - Streaming extraction with a bounded per-object buffer (4KiB default)
//   - Background chunk prefetch overlapping disk latency with scanning
//   - Arena-backed records with zero per-record heap allocations at steady state
//   - Transparent decompression of gzip/zstd/s2/lz4 feeds by file extension
//   - Positional diagnostics (line/column/file identifier) on every parse failure
//
// # Basic Usage
//
//	import "github.com/mailops/feedscan"
//
//	session, err := feedscan.Open("iv_events.json.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	for rec := range session.All() {
//	    fmt.Printf("%s %s\n", rec.IMb, rec.MailPhase)
//	}
//	if err := session.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// Records are valid only until the next iteration step; use Record.Clone to
// retain one.
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the scan
// package, simplifying the most common use cases. For fine-grained control
// (chunk sizing, prefetch tuning, forced compression), pass scan options
// through Open or use the scan package directly.
package feedscan

import (
	"github.com/mailops/feedscan/internal/hash"
	"github.com/mailops/feedscan/scan"
)

// Record is one extracted tracking event. See scan.Record for the lifetime
// contract.
type Record = scan.Record

// Open opens a feed file and returns a scan session over its events array.
//
// Compression is detected from the path's extension (.gz, .zst, .s2, .lz4);
// anything else is treated as a plain JSON feed. The caller must Close the
// session regardless of how the scan ends.
//
// Parameters:
//   - path: Feed file path
//   - opts: Optional tuning (see scan.Option)
//
// Returns:
//   - *scan.Session: Session positioned before the events array
//   - error: Open failure or invalid option
//
// Available options:
//   - scan.WithChunkSize(n) / scan.WithMaxObjectSize(n)
//   - scan.WithPrefetch(enabled) / scan.WithPrefetchTimeout(d)
//   - scan.WithCompression(t)
//
// Example:
//
//	session, err := feedscan.Open("feed.json",
//	    scan.WithMaxObjectSize(16*1024),
//	    scan.WithPrefetch(false),
//	)
func Open(path string, opts ...scan.Option) (*scan.Session, error) {
	return scan.Open(path, opts...)
}

// FeedID converts a feed path to its stable 64-bit identifier (xxHash64).
//
// The same identifier appears in scan telemetry as Position.FileID, so
// ingestion pipelines can correlate diagnostics with the feed they came
// from without carrying full paths.
func FeedID(path string) uint64 {
	return hash.ID(path)
}

// RecordID converts an Intelligent Mail barcode to a fixed-size 64-bit key
// (xxHash64), convenient for dedup sets across feeds.
func RecordID(imb string) uint64 {
	return hash.ID(imb)
}
