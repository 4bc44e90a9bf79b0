package scan

import (
	"github.com/mailops/feedscan/internal/hash"
	"github.com/mailops/feedscan/source"
)

// cursor tracks the logical byte position of the scan for diagnostics while
// forwarding bytes from the source unchanged.
type cursor struct {
	src    source.ByteSource
	file   string
	fileID uint64
	line   uint
	column uint
}

func newCursor(src source.ByteSource, file string) *cursor {
	return &cursor{
		src:    src,
		file:   file,
		fileID: hash.ID(file),
		line:   1,
	}
}

// next consumes and returns one byte, advancing the line/column bookkeeping.
func (c *cursor) next() (byte, error) {
	b, err := c.src.NextByte()
	if err != nil {
		return 0, err
	}

	if b == '\n' {
		c.line++
		c.column = 0
	} else {
		c.column++
	}

	return b, nil
}

// position reports the location of the most recently consumed byte.
func (c *cursor) position() Position {
	return Position{
		Line:   c.line,
		Column: c.column,
		File:   c.file,
		FileID: c.fileID,
	}
}
