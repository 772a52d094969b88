// Package errs defines the sentinel errors shared across qwire packages.
//
// Callers can match these with errors.Is regardless of the context a raise
// site wraps around them.
package errs

import "errors"

var (
	// ErrUnsupportedType indicates a value whose runtime kind has no q wire
	// encoding, or a value that cannot be packed into its tag's fixed-width
	// layout.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrProtocolVersion indicates a value that requires a newer negotiated
	// IPC protocol version than the one the writer was created with.
	ErrProtocolVersion = errors.New("protocol version violation")

	// ErrTextEncoding indicates text that cannot be represented in the
	// configured character encoding.
	ErrTextEncoding = errors.New("text encoding failure")
)
