package scan

import (
	"bytes"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mailops/feedscan/errs"
	"github.com/mailops/feedscan/internal/pool"
)

// Target field names within each event object.
var (
	keyIMb       = []byte("imb")
	keyMailPhase = []byte("mailPhase")
)

// projector turns one extracted object's raw bytes into a Record.
//
// The parse is minimal and tolerant: the feed schema carries dozens of
// members per event, and every member that is not imb or mailPhase is
// skipped without interpretation. Both target fields must be present as
// JSON strings; anything else is a format error.
//
// Decoded strings land in the session's arena; the scratch buffer is only
// touched for the rare value that actually contains an escape sequence.
type projector struct {
	arena   *pool.Arena
	scratch *pool.ByteBuffer
}

// project parses data as a flat JSON object and extracts the two target
// fields. pos is attached to any error for diagnostics.
func (p *projector) project(data []byte, pos Position) (Record, error) {
	var (
		rec       Record
		haveIMb   bool
		havePhase bool
	)

	i := skipSpace(data, 0)
	if i >= len(data) || data[i] != '{' {
		return rec, fmt.Errorf("%w: event object must begin with '{' at %s", errs.ErrInvalidFormat, pos)
	}
	i++

	first := true
	for {
		i = skipSpace(data, i)
		if i >= len(data) {
			return rec, fmt.Errorf("%w: unterminated event object at %s", errs.ErrInvalidFormat, pos)
		}
		if data[i] == '}' {
			break
		}

		if !first {
			if data[i] != ',' {
				return rec, fmt.Errorf("%w: expected ',' between members, got %q at %s",
					errs.ErrInvalidFormat, data[i], pos)
			}
			i = skipSpace(data, i+1)
		}
		first = false

		key, n, err := rawString(data[i:])
		if err != nil {
			return rec, fmt.Errorf("%w at %s", err, pos)
		}
		i += n

		i = skipSpace(data, i)
		if i >= len(data) || data[i] != ':' {
			return rec, fmt.Errorf("%w: expected ':' after member name at %s", errs.ErrInvalidFormat, pos)
		}
		i = skipSpace(data, i+1)
		if i >= len(data) {
			return rec, fmt.Errorf("%w: member without value at %s", errs.ErrInvalidFormat, pos)
		}

		isIMb := bytes.Equal(key, keyIMb)
		isPhase := bytes.Equal(key, keyMailPhase)

		if data[i] != '"' {
			if isIMb || isPhase {
				return rec, fmt.Errorf("%w: field %q must be a JSON string at %s",
					errs.ErrInvalidFormat, key, pos)
			}

			n, err = skipNonString(data[i:])
			if err != nil {
				return rec, fmt.Errorf("%w at %s", err, pos)
			}
			i += n

			continue
		}

		switch {
		case isIMb:
			rec.IMb, n, err = p.decodeString(data[i:])
			haveIMb = err == nil
		case isPhase:
			rec.MailPhase, n, err = p.decodeString(data[i:])
			havePhase = err == nil
		default:
			_, n, err = rawString(data[i:])
		}
		if err != nil {
			return rec, fmt.Errorf("%w at %s", err, pos)
		}
		i += n
	}

	if !haveIMb {
		return rec, fmt.Errorf("%w: required field %q missing at %s", errs.ErrInvalidFormat, keyIMb, pos)
	}
	if !havePhase {
		return rec, fmt.Errorf("%w: required field %q missing at %s", errs.ErrInvalidFormat, keyMailPhase, pos)
	}

	return rec, nil
}

// rawString scans a quoted string starting at data[0] without decoding it.
// Returns the raw content between the quotes and the total bytes consumed
// including both quotes.
func rawString(data []byte) ([]byte, int, error) {
	if len(data) == 0 || data[0] != '"' {
		return nil, 0, fmt.Errorf("%w: expected '\"'", errs.ErrInvalidFormat)
	}

	for i := 1; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++ // skip the escaped byte
		case '"':
			return data[1:i], i + 1, nil
		}
	}

	return nil, 0, fmt.Errorf("%w: unterminated string", errs.ErrInvalidFormat)
}

// decodeString scans a quoted string starting at data[0] and copies its
// decoded contents into the arena. Values without escape sequences take the
// fast path straight into the arena; escaped values are decoded through the
// scratch buffer first.
func (p *projector) decodeString(data []byte) (string, int, error) {
	raw, n, err := rawString(data)
	if err != nil {
		return "", 0, err
	}

	if bytes.IndexByte(raw, '\\') < 0 {
		return p.arena.AppendString(raw), n, nil
	}

	p.scratch.Reset()
	if err := unescapeInto(p.scratch, raw); err != nil {
		return "", 0, err
	}

	return p.arena.AppendString(p.scratch.Bytes()), n, nil
}

// unescapeInto decodes JSON string escapes from raw into buf.
func unescapeInto(buf *pool.ByteBuffer, raw []byte) error {
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			_ = buf.WriteByte(c)
			continue
		}

		i++
		if i >= len(raw) {
			return fmt.Errorf("%w: truncated escape sequence", errs.ErrInvalidFormat)
		}

		switch raw[i] {
		case '"':
			_ = buf.WriteByte('"')
		case '\\':
			_ = buf.WriteByte('\\')
		case '/':
			_ = buf.WriteByte('/')
		case 'b':
			_ = buf.WriteByte('\b')
		case 'f':
			_ = buf.WriteByte('\f')
		case 'n':
			_ = buf.WriteByte('\n')
		case 'r':
			_ = buf.WriteByte('\r')
		case 't':
			_ = buf.WriteByte('\t')
		case 'u':
			consumed, err := unescapeUnicode(buf, raw[i+1:])
			if err != nil {
				return err
			}
			i += consumed
		default:
			return fmt.Errorf("%w: invalid escape sequence \\%c", errs.ErrInvalidFormat, raw[i])
		}
	}

	return nil
}

// unescapeUnicode decodes the hex digits of a \uXXXX escape (raw starts
// just past the 'u'), combining surrogate pairs when present. Returns the
// number of bytes consumed from raw.
func unescapeUnicode(buf *pool.ByteBuffer, raw []byte) (int, error) {
	r1, ok := hexRune(raw)
	if !ok {
		return 0, fmt.Errorf("%w: invalid \\u escape", errs.ErrInvalidFormat)
	}
	consumed := 4

	r := rune(r1)
	if utf16.IsSurrogate(r) {
		if len(raw) >= 10 && raw[4] == '\\' && raw[5] == 'u' {
			if r2, ok2 := hexRune(raw[6:]); ok2 {
				if combined := utf16.DecodeRune(r, rune(r2)); combined != utf8.RuneError {
					r = combined
					consumed = 10
				}
			}
		}
		if consumed == 4 {
			// Unpaired surrogate: mirror encoding/json and substitute.
			r = utf8.RuneError
		}
	}

	var tmp [utf8.UTFMax]byte
	_, _ = buf.Write(tmp[:utf8.EncodeRune(tmp[:], r)])

	return consumed, nil
}

// hexRune parses four hex digits.
func hexRune(raw []byte) (uint16, bool) {
	if len(raw) < 4 {
		return 0, false
	}

	var v uint16
	for i := 0; i < 4; i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | uint16(c-'0')
		case c >= 'a' && c <= 'f':
			v = v<<4 | uint16(c-'a'+10)
		case c >= 'A' && c <= 'F':
			v = v<<4 | uint16(c-'A'+10)
		default:
			return 0, false
		}
	}

	return v, true
}

// skipNonString consumes one non-string JSON value (number, literal, array,
// or object) and returns the bytes consumed. Nested containers are skipped
// with quote-aware depth tracking.
func skipNonString(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: member without value", errs.ErrInvalidFormat)
	}

	if data[0] == '{' || data[0] == '[' {
		var (
			depth    int
			inQuotes bool
			escaped  bool
		)
		for i := 0; i < len(data); i++ {
			b := data[i]
			switch {
			case escaped:
				escaped = false
			case b == '\\' && inQuotes:
				escaped = true
			case b == '"':
				inQuotes = !inQuotes
			case inQuotes:
			case b == '{' || b == '[':
				depth++
			case b == '}' || b == ']':
				depth--
				if depth == 0 {
					return i + 1, nil
				}
			}
		}

		return 0, fmt.Errorf("%w: unterminated nested value", errs.ErrInvalidFormat)
	}

	// Number or literal: runs until a structural byte.
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b == ',' || b == '}' || b == ']' || isWhitespace(b) {
			if i == 0 {
				return 0, fmt.Errorf("%w: member without value", errs.ErrInvalidFormat)
			}

			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: unterminated member value", errs.ErrInvalidFormat)
}

// skipSpace returns the index of the first non-whitespace byte at or after i.
func skipSpace(data []byte, i int) int {
	for i < len(data) && isWhitespace(data[i]) {
		i++
	}

	return i
}
