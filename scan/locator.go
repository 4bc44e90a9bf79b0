package scan

import (
	"fmt"
	"io"

	"github.com/mailops/feedscan/errs"
)

// eventsKey is the only top-level member the scanner cares about.
const eventsKey = "events"

// locateEventsArray consumes bytes until the quoted "events" key and its
// opening bracket have been found.
//
// The match is deliberately shallow: any quoted string that is exactly
// "events", followed by a colon outside quotes, is accepted as the key.
// The feed contract guarantees the key appears at the top level, so depth
// tracking buys nothing here.
//
// Returns:
//   - (true, nil) with the cursor positioned just past the '[' on success
//   - (false, nil) when the stream ends before the key is found; callers
//     must treat this identically to a feed with zero records
//   - (false, error) when the byte after the key's colon is not '[', or on
//     a read failure
func locateEventsArray(cur *cursor) (bool, error) {
	var (
		inQuotes     bool
		escaped      bool
		matched      int
		mismatch     bool
		seenKey      bool
		awaitBracket bool
	)

	for {
		b, err := cur.next()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		if awaitBracket {
			if isWhitespace(b) {
				continue
			}
			if b == '[' {
				return true, nil
			}

			return false, fmt.Errorf(
				"%w: first non-whitespace character after the events key's colon must be an opening bracket, got %q at %s",
				errs.ErrInvalidFormat, b, cur.position())
		}

		if inQuotes {
			if escaped {
				// The key contains no escapes, so any escape disqualifies
				// the current string.
				escaped = false
				mismatch = true

				continue
			}

			switch {
			case b == '\\':
				escaped = true
			case b == '"':
				inQuotes = false
				seenKey = !mismatch && matched == len(eventsKey)
			case !mismatch && matched < len(eventsKey) && b == eventsKey[matched]:
				matched++
			default:
				mismatch = true
			}

			continue
		}

		switch b {
		case '"':
			inQuotes = true
			matched = 0
			mismatch = false
		case ':':
			if seenKey {
				awaitBracket = true
			}
		}
	}
}

// isWhitespace reports whether b is JSON insignificant whitespace.
func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
