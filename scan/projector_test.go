package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailops/feedscan/errs"
	"github.com/mailops/feedscan/internal/pool"
)

func newTestProjector() *projector {
	return &projector{
		arena:   pool.NewArena(pool.ArenaDefaultSize),
		scratch: pool.NewByteBuffer(pool.ObjectBufferDefaultSize),
	}
}

func TestProject_BothFields(t *testing.T) {
	p := newTestProjector()

	rec, err := p.project([]byte(`{"imb":"4537457458800947547708425641125","mailPhase":"Phase 3c - Destination Sequenced Carrier Sortation"}`), Position{})
	require.NoError(t, err)
	assert.Equal(t, "4537457458800947547708425641125", rec.IMb)
	assert.Equal(t, "Phase 3c - Destination Sequenced Carrier Sortation", rec.MailPhase)
}

func TestProject_IgnoresUnknownFields(t *testing.T) {
	p := newTestProjector()

	obj := `{
		"opCode": 918,
		"scanDatetime": "2026-08-29T11:02:44Z",
		"mailPhase": "Phase 0 - Origin Processing Cancellation of Postage",
		"machineId": null,
		"site": {"zip": "33701", "name": "ST PETERSBURG"},
		"routes": [1, 2, 3],
		"imb": "6899000795822123340248082958957",
		"handling": true
	}`
	rec, err := p.project([]byte(obj), Position{})
	require.NoError(t, err)
	assert.Equal(t, "6899000795822123340248082958957", rec.IMb)
	assert.Equal(t, "Phase 0 - Origin Processing Cancellation of Postage", rec.MailPhase)
}

func TestProject_FieldOrderIrrelevant(t *testing.T) {
	p := newTestProjector()

	rec, err := p.project([]byte(`{"mailPhase":"Phase 1","imb":"42"}`), Position{})
	require.NoError(t, err)
	assert.Equal(t, "42", rec.IMb)
	assert.Equal(t, "Phase 1", rec.MailPhase)
}

func TestProject_MissingRequiredField(t *testing.T) {
	tests := []struct {
		name string
		obj  string
		want string
	}{
		{"missing imb", `{"mailPhase":"Phase 1"}`, "imb"},
		{"missing mailPhase", `{"imb":"42"}`, "mailPhase"},
		{"empty object", `{}`, "imb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProjector()
			_, err := p.project([]byte(tt.obj), Position{})
			require.ErrorIs(t, err, errs.ErrInvalidFormat)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProject_TargetFieldWrongType(t *testing.T) {
	tests := []struct {
		name string
		obj  string
	}{
		{"imb null", `{"imb":null,"mailPhase":"Phase 1"}`},
		{"imb number", `{"imb":42,"mailPhase":"Phase 1"}`},
		{"mailPhase bool", `{"imb":"42","mailPhase":true}`},
		{"mailPhase object", `{"imb":"42","mailPhase":{"a":1}}`},
		{"mailPhase array", `{"imb":"42","mailPhase":["Phase 1"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProjector()
			_, err := p.project([]byte(tt.obj), Position{})
			require.ErrorIs(t, err, errs.ErrInvalidFormat)
			assert.Contains(t, err.Error(), "must be a JSON string")
		})
	}
}

func TestProject_EscapeSequences(t *testing.T) {
	tests := []struct {
		name string
		obj  string
		want string
	}{
		{"quote and backslash", `{"imb":"1","mailPhase":"a \"b\" \\ c"}`, `a "b" \ c`},
		{"control escapes", `{"imb":"1","mailPhase":"l1\nl2\tend"}`, "l1\nl2\tend"},
		{"solidus", `{"imb":"1","mailPhase":"a\/b"}`, "a/b"},
		{"unicode escape", `{"imb":"1","mailPhase":"grün"}`, "grün"},
		{"surrogate pair", `{"imb":"1","mailPhase":"😀"}`, "😀"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProjector()
			rec, err := p.project([]byte(tt.obj), Position{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.MailPhase)
		})
	}
}

func TestProject_InvalidEscape(t *testing.T) {
	p := newTestProjector()
	_, err := p.project([]byte(`{"imb":"1","mailPhase":"bad \x escape"}`), Position{})
	require.ErrorIs(t, err, errs.ErrInvalidFormat)
}

func TestProject_MalformedObjects(t *testing.T) {
	tests := []struct {
		name string
		obj  string
	}{
		{"no opening brace", `"imb":"1"`},
		{"missing colon", `{"imb" "1"}`},
		{"missing comma", `{"imb":"1" "mailPhase":"p"}`},
		{"unterminated string", `{"imb":"1}`},
		{"bare key", `{imb:"1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProjector()
			_, err := p.project([]byte(tt.obj), Position{})
			assert.ErrorIs(t, err, errs.ErrInvalidFormat)
		})
	}
}

func TestProject_RecordsShareArena(t *testing.T) {
	p := newTestProjector()

	first, err := p.project([]byte(`{"imb":"11111","mailPhase":"Phase 1"}`), Position{})
	require.NoError(t, err)
	require.Equal(t, "11111", first.IMb)

	p.arena.Reset()
	second, err := p.project([]byte(`{"imb":"22222","mailPhase":"Phase 2"}`), Position{})
	require.NoError(t, err)

	// The arena was reset between projections, so the first record's
	// strings now observe the second record's bytes.
	assert.Equal(t, "22222", first.IMb)
	assert.Equal(t, "22222", second.IMb)
}

func BenchmarkProject(b *testing.B) {
	p := &projector{
		arena:   pool.NewArena(pool.ArenaDefaultSize),
		scratch: pool.NewByteBuffer(pool.ObjectBufferDefaultSize),
	}
	obj := []byte(`{"opCode":918,"scanDatetime":"2026-08-29T11:02:44Z","mailPhase":"Phase 3c - Destination Sequenced Carrier Sortation","site":{"zip":"33701"},"imb":"4537457458800947547708425641125"}`)
	b.ResetTimer()

	for b.Loop() {
		p.arena.Reset()
		if _, err := p.project(obj, Position{}); err != nil {
			b.Fatal(err)
		}
	}
}
