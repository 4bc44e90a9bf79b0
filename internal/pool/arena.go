package pool

import (
	"sync"
	"unsafe"
)

// ArenaDefaultSize is the initial capacity of a record arena. Two decoded
// strings per record keep well under this for typical tracking feeds.
const ArenaDefaultSize = 256

// Arena is a bump region backing the decoded strings of the most recent
// record. Reset reclaims all of it at once, so per-record allocations never
// reach the heap after warmup.
//
// Strings returned by AppendString alias the arena's memory and are
// invalidated by the next Reset. Callers that need to retain a string past
// the next scan iteration must copy it (strings.Clone).
//
// Note: the Arena is NOT thread-safe. Each arena belongs to a single session.
type Arena struct {
	buf []byte
}

// NewArena creates an arena with the given initial capacity.
func NewArena(capacity int) *Arena {
	return &Arena{
		buf: make([]byte, 0, capacity),
	}
}

// AppendString copies src into the arena and returns a string view of the
// copied region without a second allocation.
//
// The returned string shares the arena's memory: it is valid only until the
// next Reset. If the arena grows mid-record, strings handed out earlier keep
// referencing the previous block, so they stay intact for the rest of the
// current record.
func (a *Arena) AppendString(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	start := len(a.buf)
	a.buf = append(a.buf, src...)
	region := a.buf[start:]

	return unsafe.String(&region[0], len(region))
}

// Reset reclaims all arena memory, invalidating every string handed out
// since the previous Reset. Capacity is retained for reuse.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
}

// Len returns the number of live bytes in the arena.
func (a *Arena) Len() int {
	return len(a.buf)
}

// Cap returns the arena's current capacity.
func (a *Arena) Cap() int {
	return cap(a.buf)
}

var arenaPool = sync.Pool{
	New: func() any { return NewArena(ArenaDefaultSize) },
}

// GetArena retrieves a reset arena from the pool.
func GetArena() *Arena {
	a, _ := arenaPool.Get().(*Arena)
	return a
}

// PutArena resets an arena and returns it to the pool.
func PutArena(a *Arena) {
	if a == nil {
		return
	}

	a.Reset()
	arenaPool.Put(a)
}
