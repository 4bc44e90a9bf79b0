// Package scan implements the streaming feed scanner.
//
// A tracking-event feed is a single large JSON object whose only interesting
// content is the "events" array: hundreds of thousands of small objects, of
// which exactly two string fields per element matter (imb and mailPhase).
// The scanner extracts those two fields record by record without ever
// materializing the document, a general-purpose parse, or more than one
// element's worth of output.
//
// The pipeline inside a Session:
//
//	byte source -> key locator -> object extractor -> field projector
//
// The key locator consumes bytes until the events array opens. The object
// extractor then copies one balanced {...} object at a time into a bounded
// buffer, respecting quoted-string contents. The field projector parses
// that buffer as a flat object and decodes only the two target fields into
// the session's arena.
//
// Records are arena-backed: the strings of the record returned by Next are
// valid only until the next Next or Close call. Use Record.Clone to retain
// one.
package scan
