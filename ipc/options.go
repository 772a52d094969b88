package ipc

import (
	"golang.org/x/text/encoding"

	"github.com/qwireio/qwire/internal/options"
)

// ConversionOptions control how values are converted during one Write call.
// The Writer holds the process-wide defaults; per-call WriteOptions override
// them field by field for the duration of that call only.
type ConversionOptions struct {
	// SingleCharStrings preserves length-1 strings as char lists instead of
	// collapsing them to a single char atom.
	SingleCharStrings bool
}

// WriteOption overrides a conversion option for a single Write call.
type WriteOption func(*ConversionOptions)

// SingleCharStrings overrides the writer's single-char string handling for
// one call.
func SingleCharStrings(enabled bool) WriteOption {
	return func(o *ConversionOptions) {
		o.SingleCharStrings = enabled
	}
}

// Option is a functional option for configuring a Writer at construction.
type Option = options.Option[*Writer]

// WithTextEncoding sets the character encoding applied to strings, symbols,
// lambda expressions and error messages. A nil encoding disables
// transcoding and sends raw UTF-8 bytes. The default is Latin-1
// (ISO 8859-1), matching the q convention of 8-bit char data.
func WithTextEncoding(enc encoding.Encoding) Option {
	return options.NoError(func(w *Writer) {
		w.textEncoding = enc
	})
}

// WithSingleCharStrings sets the writer-wide default for single-char string
// handling. Per-call SingleCharStrings options take precedence.
func WithSingleCharStrings(enabled bool) Option {
	return options.NoError(func(w *Writer) {
		w.defaults.SingleCharStrings = enabled
	})
}

// WithCompression enables outbound message compression. Messages are
// compressed with the protocol's own block coding, and only when they
// exceed the protocol threshold and actually shrink; everything else is
// sent uncompressed.
func WithCompression(enabled bool) Option {
	return options.NoError(func(w *Writer) {
		w.compressEnabled = enabled
	})
}
