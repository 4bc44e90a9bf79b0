package scan

import (
	"fmt"
	"io"

	"github.com/mailops/feedscan/errs"
	"github.com/mailops/feedscan/internal/pool"
)

// nextObject extracts the raw bytes of the next balanced {...} element of
// the events array into buf. It must only be called once the array is open.
//
// Leading whitespace and one element separator comma are skipped. A ']'
// encountered before any object byte has been written signals the end of
// the array: (false, nil), not an error.
//
// Bytes are copied verbatim, toggling quote parity on each unescaped '"',
// so braces and commas inside quoted values never confuse the brace
// balancing. The closing '}' is copied and ends the object.
//
// Failure modes:
//   - an element that does not begin with '{' is ErrInvalidFormat
//   - an object longer than maxSize bytes is ErrBufferOverflow; the session
//     cannot resume mid-object, so this is fatal
//   - end of stream with the object still open is ErrObjectNotTerminated
func nextObject(cur *cursor, buf *pool.ByteBuffer, maxSize int) (bool, error) {
	var (
		started   bool
		inQuotes  bool
		escaped   bool
		depth     int
		commaSeen bool
	)

	for {
		b, err := cur.next()
		if err == io.EOF {
			if started {
				return false, fmt.Errorf("%w: end of feed inside event object at %s",
					errs.ErrObjectNotTerminated, cur.position())
			}
			// Truncated array tail: treat like the closing bracket.
			return false, nil
		}
		if err != nil {
			return false, err
		}

		if !started {
			switch {
			case isWhitespace(b):
				continue
			case b == ',' && !commaSeen:
				commaSeen = true
				continue
			case b == ']':
				return false, nil
			case b == '{':
				started = true
				depth = 1
			default:
				return false, fmt.Errorf("%w: event object must begin with '{', got %q at %s",
					errs.ErrInvalidFormat, b, cur.position())
			}
		} else {
			switch {
			case escaped:
				escaped = false
			case b == '\\' && inQuotes:
				escaped = true
			case b == '"':
				inQuotes = !inQuotes
			case inQuotes:
				// Quoted content: braces and commas here are data.
			case b == '{':
				depth++
			case b == '}':
				depth--
			}
		}

		if buf.Len() >= maxSize {
			return false, fmt.Errorf("%w: event object exceeds %d bytes at %s",
				errs.ErrBufferOverflow, maxSize, cur.position())
		}
		_ = buf.WriteByte(b)

		if started && depth == 0 {
			return true, nil
		}
	}
}
