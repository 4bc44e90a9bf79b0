// Package errs defines the sentinel error values shared across feedscan packages.
//
// All errors are plain sentinel values suitable for errors.Is checks. Callers
// receive them wrapped with contextual detail (usually including the scan
// position) via fmt.Errorf("%w: ...").
//
// End of feed is deliberately NOT represented here: a fully consumed feed is
// signaled with io.EOF, which is a terminal condition rather than a failure.
package errs

import "errors"

var (
	// ErrSessionConflict indicates a session was driven from two call sites at
	// once, or an operation was attempted on a session that is already closed.
	ErrSessionConflict = errors.New("session conflict")

	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrInvalidFormat indicates the feed does not match the expected shape at
	// the point of failure: missing opening bracket after the events key,
	// unexpected token outside an object, a missing or non-string target field,
	// or unbalanced quoting at end of object.
	ErrInvalidFormat = errors.New("invalid feed format")

	// ErrObjectNotTerminated indicates the feed ended while an event object was
	// still open (an opening brace was seen but never balanced).
	ErrObjectNotTerminated = errors.New("event object not terminated")

	// ErrBufferOverflow indicates a single event object exceeded the extraction
	// buffer capacity. Fatal for the session; reopen with a larger
	// WithMaxObjectSize to process the feed.
	ErrBufferOverflow = errors.New("event object exceeds extraction buffer")

	// ErrReadFailed indicates an I/O failure from the underlying byte source,
	// including prefetch worker failures surfaced at the next read.
	ErrReadFailed = errors.New("feed read failed")

	// ErrPrefetchTimeout indicates the prefetch worker did not deliver the next
	// chunk within the configured bounded wait.
	ErrPrefetchTimeout = errors.New("prefetch chunk not ready before timeout")

	// ErrInvalidChunkSize indicates a non-positive chunk size option.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidObjectSize indicates a non-positive extraction buffer size option.
	ErrInvalidObjectSize = errors.New("invalid max object size")

	// ErrInvalidTimeout indicates a non-positive prefetch timeout option.
	ErrInvalidTimeout = errors.New("invalid prefetch timeout")
)
