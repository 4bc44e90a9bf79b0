package source

import (
	"fmt"
	"io"

	"github.com/mailops/feedscan/errs"
	"github.com/mailops/feedscan/internal/pool"
)

// DefaultChunkSize is the default number of bytes fetched from the
// underlying reader per refill. Large enough to amortize syscall overhead,
// small enough that two in-flight buffers stay cache-friendly.
const DefaultChunkSize = pool.ChunkBufferDefaultSize

// ByteSource delivers feed bytes one at a time.
//
// NextByte returns io.EOF when the stream is exhausted; the end condition is
// idempotent, never converted into an error. Any other failure is wrapped in
// errs.ErrReadFailed and is sticky: once a source has failed it keeps
// returning the same error.
type ByteSource interface {
	NextByte() (byte, error)

	// Close releases the source's buffers and, for prefetching sources,
	// stops the worker. It does not close the underlying reader.
	Close() error
}

// ChunkedSource is the single-buffer ByteSource.
//
// It reads chunkSize-byte chunks from the underlying reader and hands them
// out one byte at a time. Every refill blocks the consumer on the underlying
// Read call; use PrefetchSource to overlap that latency with scanning.
type ChunkedSource struct {
	r      io.Reader
	buf    *pool.ByteBuffer
	pooled bool
	pos    int
	eof    bool
	closed bool
	err    error
}

var _ ByteSource = (*ChunkedSource)(nil)

// NewChunkedSource creates a single-buffer source reading chunkSize-byte
// chunks from r. A non-positive chunkSize falls back to DefaultChunkSize.
func NewChunkedSource(r io.Reader, chunkSize int) *ChunkedSource {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	buf, pooled := newChunkBuffer(chunkSize)

	return &ChunkedSource{
		r:      r,
		buf:    buf,
		pooled: pooled,
	}
}

// NextByte returns the next byte of the stream, io.EOF at end of stream, or
// a wrapped errs.ErrReadFailed on I/O failure.
func (s *ChunkedSource) NextByte() (byte, error) {
	if s.pos < s.buf.Len() {
		b := s.buf.B[s.pos]
		s.pos++

		return b, nil
	}

	if err := s.refill(); err != nil {
		return 0, err
	}

	b := s.buf.B[s.pos]
	s.pos++

	return b, nil
}

// refill replaces the buffer contents with the next chunk.
func (s *ChunkedSource) refill() error {
	if s.err != nil {
		return s.err
	}
	if s.eof {
		return io.EOF
	}

	s.buf.SetLength(0)
	s.pos = 0

	for {
		n, err := s.r.Read(s.buf.B[:s.buf.Cap()])
		if n > 0 {
			s.buf.SetLength(n)
			if err == io.EOF {
				// Final chunk: deliver the bytes now, signal EOF on the
				// next refill without touching the reader again.
				s.eof = true
			} else if err != nil {
				s.err = fmt.Errorf("%w: %w", errs.ErrReadFailed, err)
			}

			return nil
		}

		if err == io.EOF {
			s.eof = true
			return io.EOF
		}
		if err != nil {
			s.err = fmt.Errorf("%w: %w", errs.ErrReadFailed, err)
			return s.err
		}
		// n == 0 with nil error is allowed by io.Reader; try again.
	}
}

// Close returns the chunk buffer to its pool. Reading after Close reports a
// read failure.
func (s *ChunkedSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	releaseChunkBuffer(s.buf, s.pooled)
	s.buf = &pool.ByteBuffer{}
	s.pos = 0
	s.err = fmt.Errorf("%w: source closed", errs.ErrReadFailed)

	return nil
}

// newChunkBuffer obtains a chunk buffer of the requested size, preferring
// the shared pool when the default size is in use.
func newChunkBuffer(chunkSize int) (buf *pool.ByteBuffer, pooled bool) {
	if chunkSize == pool.ChunkBufferDefaultSize {
		return pool.GetChunkBuffer(), true
	}

	return pool.NewByteBuffer(chunkSize), false
}

func releaseChunkBuffer(buf *pool.ByteBuffer, pooled bool) {
	if pooled {
		pool.PutChunkBuffer(buf)
	}
}
