package persistence

import (
	"github.com/hupe1980/featureset"
	"github.com/hupe1980/featureset/codec"
)

type options struct {
	codec          codec.Codec
	compression    Compression
	logger         *featureset.Logger
	mmap           bool
	verifyChecksum bool
}

// Option configures Save/Load behavior. Save ignores load-only options and
// vice versa.
type Option func(*options)

// WithCodec configures the codec for the metadata section of newly written
// files. Loading always selects the codec recorded in the file header.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures compression of the features section.
//
// Compressed files cannot be memory-mapped; Load falls back to an eager
// read for them.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithLogger configures structured logging for persistence operations.
// Pass nil to keep the default.
func WithLogger(logger *featureset.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMmap configures Load to memory-map the features section instead of
// reading it into memory. The mapping pages lazily on first access; the
// returned Container must be closed to release it.
func WithMmap(enabled bool) Option {
	return func(o *options) {
		o.mmap = enabled
	}
}

// WithChecksumVerify toggles CRC32 verification on eager loads (default
// true). Mapped loads never verify: that would fault in the whole file and
// defeat lazy paging.
func WithChecksumVerify(enabled bool) Option {
	return func(o *options) {
		o.verifyChecksum = enabled
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:          codec.Default,
		compression:    CompressionNone,
		verifyChecksum: true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
