// Package qwire serializes Go values to the q/kdb+ IPC wire format.
//
// qwire is the encoding half of a q client library: it turns in-memory
// values (atoms, vectors, dictionaries, tables, functions, error signals,
// temporals) into framed binary IPC messages ready to transmit over a
// connection. Decoding, session management and query semantics live
// elsewhere; this module only produces bytes.
//
// # Basic Usage
//
// Encoding a value into a framed message:
//
//	import "github.com/qwireio/qwire"
//
//	msg, err := qwire.Marshal([]int64{1, 2, 3}, qwire.Sync, 3)
//
// Writing directly to an open connection:
//
//	import "github.com/qwireio/qwire/ipc"
//
//	conn, _ := net.Dial("tcp", "localhost:5000")
//	w, _ := ipc.NewWriter(conn, 3)
//	_, err := w.Write(qtype.Dict{
//	    Keys:   []qtype.Symbol{"a", "b"},
//	    Values: []int64{1, 2},
//	}, qwire.Async)
//
// # Value Mapping
//
// Native Go scalars and slices map onto q atoms and typed vectors (bool,
// byte, int16, int32, int64/int, float32, float64); strings become char
// lists, time.Time a timestamp, time.Duration a timespan, uuid.UUID a guid.
// The qtype package provides wrappers for everything without a natural Go
// shape: symbols, declared-tag lists, dictionaries, tables, keyed tables,
// lambdas, projections and error signals. The qtemporal package wraps the
// remaining q temporal kinds (date, month, datetime, minute, second, time).
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the ipc
// package. For sink-bound writers, conversion options and compression, use
// the ipc package directly.
package qwire

import (
	"github.com/qwireio/qwire/ipc"
)

// MessageType identifies the kind of IPC message being framed.
type MessageType = ipc.MessageType

// Message types, re-exported for convenience.
const (
	Async    = ipc.Async
	Sync     = ipc.Sync
	Response = ipc.Response
)

// Marshal serializes data into a single framed IPC message for the given
// negotiated protocol version and returns the bytes.
func Marshal(data any, msgType MessageType, protocolVersion int, opts ...ipc.Option) ([]byte, error) {
	w, err := ipc.NewWriter(nil, protocolVersion, opts...)
	if err != nil {
		return nil, err
	}

	return w.Write(data, msgType)
}
