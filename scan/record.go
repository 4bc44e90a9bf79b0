package scan

import (
	"fmt"
	"strings"
)

// Record is one extracted tracking event: the Intelligent Mail barcode and
// the processing phase of a single mailpiece.
//
// Both strings alias the session's transient arena. They are valid until
// the next Next or Close call on the owning session; retain them across
// iterations with Clone.
type Record struct {
	// IMb is the 31-digit Intelligent Mail barcode of the mailpiece.
	IMb string

	// MailPhase is the processing phase description, e.g.
	// "Phase 3c - Destination Sequenced Carrier Sortation".
	MailPhase string
}

// Clone returns a copy of the record whose strings are independent of the
// session's arena and remain valid after further scanning.
func (r Record) Clone() Record {
	return Record{
		IMb:       strings.Clone(r.IMb),
		MailPhase: strings.Clone(r.MailPhase),
	}
}

// Position is an advisory scan location used for diagnostics. It is carried
// inside extraction errors for operator triage and is not load-bearing for
// correctness.
type Position struct {
	// Line is the 1-based line of the most recently consumed byte.
	Line uint

	// Column is the 1-based column of the most recently consumed byte.
	Column uint

	// File is the feed path the session was opened with.
	File string

	// FileID is a stable 64-bit identifier of the feed path (xxHash64),
	// convenient for correlating diagnostics across log pipelines that
	// truncate long paths.
	FileID uint64
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}
