package scan

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"sync/atomic"

	"github.com/mailops/feedscan/compress"
	"github.com/mailops/feedscan/errs"
	"github.com/mailops/feedscan/internal/options"
	"github.com/mailops/feedscan/internal/pool"
	"github.com/mailops/feedscan/source"
)

// sessionState tracks a session's progress through the feed.
//
// The array-open state, once reached, never reverts within a session, and
// stateExhausted is terminal: further Next calls replay the end condition
// (or the fatal error) without re-scanning.
type sessionState uint8

const (
	stateArrayNotYetOpen sessionState = iota
	stateArrayOpen
	stateExhausted
	stateClosed
)

// Session is one open-to-close scan over one feed file.
//
// A session owns the open file, the byte source, the bounded extraction
// buffer, and the transient arena backing the most recent record. The arena
// is reset the moment the next Next call begins, so the previous record's
// strings are invalidated then; see Record.Clone.
//
// A session must be driven from one goroutine at a time. Concurrent or
// reentrant Next/Close calls do not corrupt state: the loser fails fast
// with ErrSessionConflict. Independent sessions over different (or the
// same) feeds are fine.
type Session struct {
	cfg  *SessionConfig
	file *os.File
	feed io.ReadCloser
	src  source.ByteSource
	cur  *cursor

	buf       *pool.ByteBuffer
	bufPooled bool
	arena     *pool.Arena
	proj      projector

	state sessionState
	err   error // terminal condition: io.EOF or the fatal error
	busy  atomic.Bool
}

// Open opens a feed file and prepares a scan session over it.
//
// Compression is detected from the path's extension unless forced with
// WithCompression. The returned session is positioned before the events
// array; the first Next call locates it.
//
// The caller must Close the session regardless of how the scan ends.
func Open(path string, opts ...Option) (*Session, error) {
	cfg := NewSessionConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}

	compression := cfg.compression
	if !cfg.compressionSet {
		compression = compress.DetectType(path)
	}

	codec, err := compress.ForType(compression)
	if err != nil {
		file.Close()
		return nil, err
	}

	feed, err := codec.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("open %s feed: %w", compression, err)
	}

	var src source.ByteSource
	if cfg.prefetch {
		src = source.NewPrefetchSource(feed, cfg.chunkSize, cfg.prefetchTimeout)
	} else {
		src = source.NewChunkedSource(feed, cfg.chunkSize)
	}

	buf, bufPooled := newObjectBuffer(cfg.maxObjectSize)
	arena := pool.GetArena()

	s := &Session{
		cfg:       cfg,
		file:      file,
		feed:      feed,
		src:       src,
		cur:       newCursor(src, path),
		buf:       buf,
		bufPooled: bufPooled,
		arena:     arena,
		proj: projector{
			arena:   arena,
			scratch: pool.GetObjectBuffer(),
		},
	}

	return s, nil
}

// Next returns the next record of the feed.
//
// The end of the events array, a feed with no events key, and an empty
// array all yield io.EOF, which repeats on every subsequent call. Any other
// error is fatal: the session makes no further forward progress and the
// same error is returned again on later calls.
//
// The returned record's strings are valid only until the next Next or
// Close call.
func (s *Session) Next() (Record, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return Record{}, fmt.Errorf("%w: session already in use", errs.ErrSessionConflict)
	}
	defer s.busy.Store(false)

	switch s.state {
	case stateClosed:
		return Record{}, errs.ErrSessionClosed
	case stateExhausted:
		return Record{}, s.err
	case stateArrayNotYetOpen, stateArrayOpen:
	}

	// The previous record's memory is reclaimed the moment a new call
	// begins; see the Record lifetime contract.
	s.arena.Reset()

	if s.state == stateArrayNotYetOpen {
		found, err := locateEventsArray(s.cur)
		if err != nil {
			return Record{}, s.fail(err)
		}
		if !found {
			// Keyless or empty feed: identical to zero records.
			return Record{}, s.finish()
		}
		s.state = stateArrayOpen
	}

	s.buf.Reset()
	ok, err := nextObject(s.cur, s.buf, s.cfg.maxObjectSize)
	if err != nil {
		return Record{}, s.fail(err)
	}
	if !ok {
		return Record{}, s.finish()
	}

	rec, err := s.proj.project(s.buf.Bytes(), s.cur.position())
	if err != nil {
		return Record{}, s.fail(err)
	}

	return rec, nil
}

// All returns an iterator over the remaining records of the feed.
//
// Iteration stops at the end of the feed or on the first failure; check
// Err after the loop to distinguish the two. Each yielded record is only
// valid for that iteration step.
//
//	for rec := range session.All() {
//	    fmt.Println(rec.IMb, rec.MailPhase)
//	}
//	if err := session.Err(); err != nil {
//	    return err
//	}
func (s *Session) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for {
			rec, err := s.Next()
			if err != nil {
				return
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Err returns the fatal error that terminated the session, or nil if the
// session is still scanning or ended cleanly at the end of the feed.
func (s *Session) Err() error {
	if s.err == nil || errors.Is(s.err, io.EOF) {
		return nil
	}

	return s.err
}

// Count drains the remaining records and returns how many were seen.
// Ingestion monitors that only need feed volume use this instead of
// touching each record.
func (s *Session) Count() (int, error) {
	n := 0
	for {
		_, err := s.Next()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

// Position reports the current scan location, for diagnostics.
func (s *Session) Position() Position {
	return s.cur.position()
}

// Close releases the byte source, the file handle, and all transient
// memory. It is idempotent. Records obtained from this session are
// invalidated.
func (s *Session) Close() error {
	if !s.busy.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: session already in use", errs.ErrSessionConflict)
	}
	defer s.busy.Store(false)

	if s.state == stateClosed {
		return nil
	}
	s.state = stateClosed
	if s.err == nil {
		s.err = errs.ErrSessionClosed
	}

	srcErr := s.src.Close()
	feedErr := s.feed.Close()
	fileErr := s.file.Close()

	if s.bufPooled {
		pool.PutObjectBuffer(s.buf)
	}
	s.buf = nil
	pool.PutObjectBuffer(s.proj.scratch)
	s.proj.scratch = nil
	pool.PutArena(s.arena)
	s.arena = nil
	s.proj.arena = nil

	return errors.Join(srcErr, feedErr, fileErr)
}

// fail parks the session in the terminal state with a fatal error.
func (s *Session) fail(err error) error {
	s.state = stateExhausted
	s.err = err

	return err
}

// finish parks the session in the terminal state with the end condition.
func (s *Session) finish() error {
	s.state = stateExhausted
	s.err = io.EOF

	return io.EOF
}

// newObjectBuffer obtains an extraction buffer, preferring the shared pool
// when the default capacity is in use.
func newObjectBuffer(maxObjectSize int) (*pool.ByteBuffer, bool) {
	if maxObjectSize == pool.ObjectBufferDefaultSize {
		return pool.GetObjectBuffer(), true
	}

	return pool.NewByteBuffer(maxObjectSize), false
}
