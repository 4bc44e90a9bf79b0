package scan

import (
	"time"

	"github.com/mailops/feedscan/compress"
	"github.com/mailops/feedscan/errs"
	"github.com/mailops/feedscan/internal/options"
	"github.com/mailops/feedscan/internal/pool"
	"github.com/mailops/feedscan/source"
)

// DefaultMaxObjectSize is the default extraction buffer capacity. One event
// object, including all of its nested quoted content, must fit within this
// many bytes; tracking-feed events run a few hundred bytes, so the default
// leaves an order of magnitude of headroom.
const DefaultMaxObjectSize = pool.ObjectBufferDefaultSize

// SessionConfig holds session tuning, populated through functional options.
type SessionConfig struct {
	chunkSize       int
	maxObjectSize   int
	prefetch        bool
	prefetchTimeout time.Duration
	compression     compress.Type
	compressionSet  bool
}

// NewSessionConfig creates a config with the default settings: prefetching
// enabled, 8KiB chunks, 4KiB extraction buffer, compression detected from
// the feed path's extension.
func NewSessionConfig() *SessionConfig {
	return &SessionConfig{
		chunkSize:       source.DefaultChunkSize,
		maxObjectSize:   DefaultMaxObjectSize,
		prefetch:        true,
		prefetchTimeout: source.DefaultPrefetchTimeout,
	}
}

// Option is a functional option for configuring a Session.
type Option = options.Option[*SessionConfig]

// WithChunkSize sets the I/O chunk size in bytes.
// Default is source.DefaultChunkSize (8KiB).
func WithChunkSize(n int) Option {
	return options.New(func(cfg *SessionConfig) error {
		if n <= 0 {
			return errs.ErrInvalidChunkSize
		}
		cfg.chunkSize = n

		return nil
	})
}

// WithMaxObjectSize sets the extraction buffer capacity in bytes. A single
// event object longer than this fails the session with ErrBufferOverflow.
// Default is DefaultMaxObjectSize (4096 bytes).
func WithMaxObjectSize(n int) Option {
	return options.New(func(cfg *SessionConfig) error {
		if n <= 0 {
			return errs.ErrInvalidObjectSize
		}
		cfg.maxObjectSize = n

		return nil
	})
}

// WithPrefetch enables or disables the background prefetch worker.
// Default is true. Disabling falls back to the single-buffer chunked
// reader, which is simpler and slightly slower on cold files.
func WithPrefetch(enabled bool) Option {
	return options.NoError(func(cfg *SessionConfig) {
		cfg.prefetch = enabled
	})
}

// WithPrefetchTimeout bounds the wait for the prefetch worker at a buffer
// swap; expiry surfaces as a read error. Only meaningful with prefetching
// enabled. Default is source.DefaultPrefetchTimeout.
func WithPrefetchTimeout(d time.Duration) Option {
	return options.New(func(cfg *SessionConfig) error {
		if d <= 0 {
			return errs.ErrInvalidTimeout
		}
		cfg.prefetchTimeout = d

		return nil
	})
}

// WithCompression forces the feed compression format instead of detecting
// it from the file extension. Use compress.TypeNone for a plain feed with
// a misleading extension.
func WithCompression(t compress.Type) Option {
	return options.New(func(cfg *SessionConfig) error {
		if _, err := compress.ForType(t); err != nil {
			return err
		}
		cfg.compression = t
		cfg.compressionSet = true

		return nil
	})
}
