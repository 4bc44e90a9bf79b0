package source

import (
	"fmt"
	"io"
	"time"

	"github.com/mailops/feedscan/errs"
	"github.com/mailops/feedscan/internal/pool"
)

// DefaultPrefetchTimeout bounds the consumer's wait at a buffer swap. A
// healthy local disk delivers an 8KiB chunk in microseconds; a worker that
// stays silent this long is treated as failed.
const DefaultPrefetchTimeout = 10 * time.Second

// chunk is one filled buffer handed from the worker to the consumer.
// A nil buf carries the stream's terminal condition instead of data.
type chunk struct {
	buf *pool.ByteBuffer
	err error
}

// PrefetchSource is the double-buffer ByteSource.
//
// A background worker fills one buffer while the consumer drains the other.
// The two buffers rotate through a pair of capacity-1 channels, so at most
// one filled chunk is pending at any time and the worker never fills a
// buffer the consumer is still reading.
//
// The consumer blocks at the swap point only when the worker has not
// finished the next chunk, and only up to the configured timeout; expiry
// surfaces as a hard read error. Worker-side I/O failures are captured and
// re-raised on the byte request that first needs the failed chunk.
//
// Close signals the worker to stop. The worker is allowed to finish its
// in-flight Read before it exits; there is no mid-read cancellation.
type PrefetchSource struct {
	filled  chan chunk
	recycle chan *pool.ByteBuffer
	done    chan struct{}
	timeout time.Duration

	active *pool.ByteBuffer
	pos    int
	pooled bool
	closed bool
	err    error
}

var _ ByteSource = (*PrefetchSource)(nil)

// NewPrefetchSource creates a double-buffer source reading chunkSize-byte
// chunks from r on a background worker.
//
// A non-positive chunkSize falls back to DefaultChunkSize; a non-positive
// timeout falls back to DefaultPrefetchTimeout.
func NewPrefetchSource(r io.Reader, chunkSize int, timeout time.Duration) *PrefetchSource {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if timeout <= 0 {
		timeout = DefaultPrefetchTimeout
	}

	front, pooled := newChunkBuffer(chunkSize)
	back, _ := newChunkBuffer(chunkSize)

	s := &PrefetchSource{
		filled:  make(chan chunk, 1),
		recycle: make(chan *pool.ByteBuffer, 2),
		done:    make(chan struct{}),
		timeout: timeout,
		pooled:  pooled,
	}

	s.recycle <- front
	s.recycle <- back

	go s.fillLoop(r)

	return s
}

// NextByte returns the next byte of the stream, io.EOF at end of stream, or
// a wrapped errs.ErrReadFailed on I/O failure (including worker failures
// and swap timeouts).
func (s *PrefetchSource) NextByte() (byte, error) {
	if s.active != nil && s.pos < s.active.Len() {
		b := s.active.B[s.pos]
		s.pos++

		return b, nil
	}

	if err := s.swap(); err != nil {
		return 0, err
	}

	b := s.active.B[s.pos]
	s.pos++

	return b, nil
}

// swap retires the drained buffer and blocks, bounded, for the next chunk.
func (s *PrefetchSource) swap() error {
	if s.err != nil {
		return s.err
	}

	if s.active != nil {
		s.recycle <- s.active
		s.active = nil
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case c := <-s.filled:
		if c.err != nil {
			s.err = c.err
			return s.err
		}

		s.active = c.buf
		s.pos = 0

		return nil
	case <-timer.C:
		s.err = fmt.Errorf("%w: %w after %v", errs.ErrReadFailed, errs.ErrPrefetchTimeout, s.timeout)
		return s.err
	}
}

// fillLoop is the worker. It owns the reader: no other goroutine touches r
// until the loop exits.
func (s *PrefetchSource) fillLoop(r io.Reader) {
	for {
		var buf *pool.ByteBuffer
		select {
		case buf = <-s.recycle:
		case <-s.done:
			return
		}

		buf.SetLength(0)

		n, err := readChunk(r, buf)
		if n > 0 {
			select {
			case s.filled <- chunk{buf: buf}:
			case <-s.done:
				return
			}
		}

		if err != nil {
			select {
			case s.filled <- chunk{err: err}:
			case <-s.done:
			}

			return
		}
	}
}

// readChunk fills buf with one Read's worth of data, normalizing the
// (n, io.EOF) and zero-byte-read cases.
func readChunk(r io.Reader, buf *pool.ByteBuffer) (int, error) {
	for {
		n, err := r.Read(buf.B[:buf.Cap()])
		if n > 0 {
			buf.SetLength(n)
			if err != nil && err != io.EOF {
				err = fmt.Errorf("%w: %w", errs.ErrReadFailed, err)
			}

			return n, err
		}

		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %w", errs.ErrReadFailed, err)
		}
	}
}

// Close stops the worker and releases the buffers. Reading after Close
// reports a read failure.
func (s *PrefetchSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	close(s.done)

	// Reclaim whatever buffers are reachable without blocking; the worker
	// keeps any buffer it still holds until it observes done and exits.
	if s.active != nil {
		releaseChunkBuffer(s.active, s.pooled)
		s.active = nil
	}
	for {
		select {
		case buf := <-s.recycle:
			releaseChunkBuffer(buf, s.pooled)
		case c := <-s.filled:
			if c.buf != nil {
				releaseChunkBuffer(c.buf, s.pooled)
			}
		default:
			s.err = fmt.Errorf("%w: source closed", errs.ErrReadFailed)
			return nil
		}
	}
}
