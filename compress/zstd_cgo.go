//go:build cgo

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

// NewReader returns a decompressing reader over r backed by the C library.
func (c ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return &gozstdReadCloser{gozstd.NewReader(r)}, nil
}

// NewWriter returns a compressing writer into w at compression level 3.
func (c ZstdCodec) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return &gozstdWriteCloser{gozstd.NewWriter(w)}, nil
}

// gozstdReadCloser adapts gozstd's Release lifecycle to io.ReadCloser.
type gozstdReadCloser struct {
	*gozstd.Reader
}

func (rc *gozstdReadCloser) Close() error {
	rc.Release()
	return nil
}

// gozstdWriteCloser flushes the frame on Close and releases the C context.
type gozstdWriteCloser struct {
	*gozstd.Writer
}

func (wc *gozstdWriteCloser) Close() error {
	err := wc.Writer.Close()
	wc.Release()

	return err
}
