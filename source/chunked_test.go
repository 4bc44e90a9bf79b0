package source

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailops/feedscan/errs"
)

// drain reads the source to exhaustion and returns every byte delivered.
func drain(t *testing.T, s ByteSource) []byte {
	t.Helper()

	var out []byte
	for {
		b, err := s.NextByte()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, b)
	}
}

// strictEOFReader fails the test if Read is called again after it has
// reported io.EOF.
type strictEOFReader struct {
	t   *testing.T
	r   io.Reader
	eof bool
}

func (r *strictEOFReader) Read(p []byte) (int, error) {
	if r.eof {
		r.t.Error("Read called after EOF was already reported")
		return 0, io.EOF
	}

	n, err := r.r.Read(p)
	if err == io.EOF {
		r.eof = true
	}

	return n, err
}

// failAfterReader yields its payload, then a permanent non-EOF error.
type failAfterReader struct {
	payload []byte
	err     error
}

func (r *failAfterReader) Read(p []byte) (int, error) {
	if len(r.payload) == 0 {
		return 0, r.err
	}

	n := copy(p, r.payload)
	r.payload = r.payload[n:]

	return n, nil
}

func TestChunkedSource_DeliversAllBytes(t *testing.T) {
	data := []byte(`{"events":[{"imb":"123","mailPhase":"Phase 1"}]}`)

	s := NewChunkedSource(bytes.NewReader(data), 7) // deliberately misaligned
	defer s.Close()

	assert.Equal(t, data, drain(t, s))
}

func TestChunkedSource_EOFIdempotent(t *testing.T) {
	s := NewChunkedSource(bytes.NewReader([]byte("ab")), 16)
	defer s.Close()

	drain(t, s)

	for i := 0; i < 3; i++ {
		_, err := s.NextByte()
		assert.ErrorIs(t, err, io.EOF, "end condition must repeat, not degrade into an error")
	}
}

func TestChunkedSource_EmptyInput(t *testing.T) {
	s := NewChunkedSource(bytes.NewReader(nil), 16)
	defer s.Close()

	_, err := s.NextByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestChunkedSource_ExactChunkMultiple(t *testing.T) {
	// File size an exact multiple of the chunk size: the final swap must
	// signal end of stream without reading past the true file length.
	const chunkSize = 8
	data := bytes.Repeat([]byte("abcdefgh"), 4) // 32 bytes, 4 full chunks

	// DataErrReader returns (n, io.EOF) on the final read, so a correct
	// source never issues a read beyond the data.
	r := &strictEOFReader{t: t, r: iotest.DataErrReader(bytes.NewReader(data))}
	s := NewChunkedSource(r, chunkSize)
	defer s.Close()

	assert.Equal(t, data, drain(t, s))

	_, err := s.NextByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestChunkedSource_ReadErrorStickyAndWrapped(t *testing.T) {
	ioErr := errors.New("device gone")
	s := NewChunkedSource(&failAfterReader{payload: []byte("abc"), err: ioErr}, 2)
	defer s.Close()

	for i := 0; i < 3; i++ {
		_, err := s.NextByte()
		require.NoError(t, err)
	}

	_, err := s.NextByte()
	require.ErrorIs(t, err, errs.ErrReadFailed)
	require.ErrorIs(t, err, ioErr)

	_, err2 := s.NextByte()
	assert.Equal(t, err, err2, "read failures must be sticky")
}

func TestChunkedSource_PartialReads(t *testing.T) {
	data := []byte("payload")
	s := NewChunkedSource(iotest.OneByteReader(bytes.NewReader(data)), 4)
	defer s.Close()

	assert.Equal(t, data, drain(t, s))
}

// stutterReader returns (0, nil) before every productive read.
type stutterReader struct {
	r       io.Reader
	stutter bool
}

func (r *stutterReader) Read(p []byte) (int, error) {
	r.stutter = !r.stutter
	if r.stutter {
		return 0, nil
	}

	return r.r.Read(p)
}

func TestChunkedSource_ZeroByteReadsRetried(t *testing.T) {
	// io.Reader permits (0, nil); the source must keep trying, not error.
	data := []byte("payload")
	s := NewChunkedSource(&stutterReader{r: bytes.NewReader(data)}, 4)
	defer s.Close()

	assert.Equal(t, data, drain(t, s))
}

func TestChunkedSource_ReadAfterClose(t *testing.T) {
	s := NewChunkedSource(bytes.NewReader([]byte("abc")), 4)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close must be idempotent")

	_, err := s.NextByte()
	assert.ErrorIs(t, err, errs.ErrReadFailed)
}

func TestChunkedSource_DefaultChunkSize(t *testing.T) {
	data := bytes.Repeat([]byte("x"), DefaultChunkSize+1)
	s := NewChunkedSource(bytes.NewReader(data), 0)
	defer s.Close()

	assert.Equal(t, data, drain(t, s))
}
