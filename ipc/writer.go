// Package ipc implements the writing half of the q IPC protocol: it
// serializes in-memory values into the q binary wire format and frames them
// into complete messages ready to transmit over a byte stream.
//
// The entry point is the Writer. One Write call owns one message: it
// allocates a buffer, emits the 8-byte header with a length placeholder,
// dispatches the value graph through the per-kind encoders, patches the
// total length, and either returns the bytes or flushes them to the
// configured sink. Nothing reaches the sink if any encoding step fails.
//
// A Writer is stateless across calls apart from its configuration.
// Concurrent Write calls on distinct Writers are independent; callers
// sharing one Writer bound to one sink must serialize their calls, since
// message framing is not interleave-safe.
package ipc

import (
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/qwireio/qwire/endian"
	"github.com/qwireio/qwire/errs"
	"github.com/qwireio/qwire/internal/options"
	"github.com/qwireio/qwire/internal/pool"
	"github.com/qwireio/qwire/qtemporal"
	"github.com/qwireio/qwire/qtype"
)

// Writer serializes values to the q IPC wire format.
//
// The zero value is not usable; construct with NewWriter.
type Writer struct {
	sink            io.Writer
	protocolVersion int
	engine          endian.EndianEngine
	marker          byte
	textEncoding    encoding.Encoding
	defaults        ConversionOptions
	compressEnabled bool
}

// NewWriter creates a Writer for the given negotiated protocol version.
//
// sink is the open connection messages are flushed to; it may be nil, in
// which case Write returns the framed bytes to the caller instead.
//
// Parameters:
//   - sink: Destination for framed messages, or nil to return bytes
//   - protocolVersion: Negotiated IPC protocol version, gates guid and
//     timestamp/timespan support
//   - opts: Optional configuration (text encoding, conversion defaults,
//     compression)
//
// Returns:
//   - *Writer: New writer instance
//   - error: Configuration error if invalid options provided
func NewWriter(sink io.Writer, protocolVersion int, opts ...Option) (*Writer, error) {
	w := &Writer{
		sink:            sink,
		protocolVersion: protocolVersion,
		engine:          endian.GetNativeEngine(),
		textEncoding:    charmap.ISO8859_1,
	}
	if endian.IsNativeLittleEndian() {
		w.marker = 1
	}

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// Write serializes data into a single framed IPC message.
//
// The message is flushed to the sink when one was provided (nil return),
// otherwise the framed bytes are returned. Any failure aborts the whole
// call before anything is flushed, so a returned error always means
// "nothing was sent".
//
// Parameters:
//   - data: Value to serialize; nil encodes the generic null
//   - msgType: Async, Sync or Response
//   - opts: Per-call conversion overrides
//
// Returns:
//   - []byte: Framed message when no sink is configured, nil otherwise
//   - error: ErrUnsupportedType, ErrProtocolVersion, ErrTextEncoding, or a
//     sink write error
func (w *Writer) Write(data any, msgType MessageType, opts ...WriteOption) ([]byte, error) {
	buf := pool.GetMessageBuffer()
	defer pool.PutMessageBuffer(buf)

	effective := w.defaults
	for _, opt := range opts {
		opt(&effective)
	}

	e := &encoder{w: w, buf: buf, opts: effective}

	// Header with a length placeholder, patched below.
	buf.MustWrite([]byte{w.marker, byte(msgType), 0, 0, 0, 0, 0, 0})

	if err := e.write(data); err != nil {
		return nil, err
	}

	w.engine.PutUint32(buf.Slice(sizeOffset, sizeOffset+4), uint32(buf.Len()))

	out := buf.Bytes()
	if w.compressEnabled {
		if compressed, ok := compressMessage(out, w.engine); ok {
			out = compressed
		}
	}

	if w.sink != nil {
		if _, err := w.sink.Write(out); err != nil {
			return nil, err
		}
		return nil, nil
	}

	msg := make([]byte, len(out))
	copy(msg, out)

	return msg, nil
}

// encoder carries the per-call state: the output buffer and the effective
// conversion options for this one message.
type encoder struct {
	w    *Writer
	buf  *pool.ByteBuffer
	opts ConversionOptions
}

// writerFunc serializes one already-classified value into the buffer.
type writerFunc func(e *encoder, data any) error

// writerRegistry maps concrete runtime types to their encoders. It is
// populated once at startup and treated as immutable afterwards.
var writerRegistry map[reflect.Type]writerFunc

func init() {
	writerRegistry = map[reflect.Type]writerFunc{
		reflect.TypeOf(""): func(e *encoder, v any) error {
			return e.writeText(v.(string))
		},
		reflect.TypeOf([]byte(nil)): func(e *encoder, v any) error {
			return e.writeString(v.([]byte))
		},
		reflect.TypeOf(qtype.Symbol("")): func(e *encoder, v any) error {
			return e.writeSymbol(v.(qtype.Symbol))
		},
		reflect.TypeOf(uuid.UUID{}): func(e *encoder, v any) error {
			return e.writeGUID(v.(uuid.UUID))
		},
		reflect.TypeOf(qtemporal.Temporal{}): func(e *encoder, v any) error {
			return e.writeTemporal(v.(qtemporal.Temporal))
		},
		reflect.TypeOf(time.Time{}): func(e *encoder, v any) error {
			return e.writeTemporal(qtemporal.Timestamp(v.(time.Time)))
		},
		reflect.TypeOf(time.Duration(0)): func(e *encoder, v any) error {
			return e.writeTemporal(qtemporal.Timespan(v.(time.Duration)))
		},
		reflect.TypeOf(qtype.List{}): func(e *encoder, v any) error {
			l := v.(qtype.List)
			return e.writeList(l.Data, l.Tag)
		},
		reflect.TypeOf(qtype.Dict{}): func(e *encoder, v any) error {
			d := v.(qtype.Dict)
			return e.writeDict(d.Keys, d.Values)
		},
		reflect.TypeOf(qtype.KeyedTable{}): func(e *encoder, v any) error {
			kt := v.(qtype.KeyedTable)
			return e.writeDict(kt.Keys, kt.Values)
		},
		reflect.TypeOf(qtype.Table{}): func(e *encoder, v any) error {
			return e.writeTable(v.(qtype.Table))
		},
		reflect.TypeOf(qtype.Lambda{}): func(e *encoder, v any) error {
			return e.writeLambda(v.(qtype.Lambda))
		},
		reflect.TypeOf(qtype.Projection{}): func(e *encoder, v any) error {
			return e.writeProjection(v.(qtype.Projection))
		},
	}

	// Native vectors all funnel through the list encoder with an inferred
	// element tag.
	for _, proto := range []any{
		[]bool(nil), []int16(nil), []int32(nil), []int64(nil), []int(nil),
		[]float32(nil), []float64(nil), []qtype.Symbol(nil), []uuid.UUID(nil),
		[]time.Time(nil), []time.Duration(nil), []any(nil),
	} {
		writerRegistry[reflect.TypeOf(proto)] = func(e *encoder, v any) error {
			return e.writeList(v, 0)
		}
	}
}

// write classifies data and routes it to exactly one encoding path:
// null, error signal, registered kind, atom-tag fallback, or failure.
// Nothing is written for a value that fails classification.
func (e *encoder) write(data any) error {
	if data == nil {
		return e.writeNull()
	}

	// Error signals match by interface, not exact kind, so both dedicated
	// qtype.Error values and plain Go errors signal their message.
	if sig, ok := data.(error); ok {
		return e.writeError(sig)
	}

	if fn, ok := writerRegistry[reflect.TypeOf(data)]; ok {
		return fn(e, data)
	}

	if tag, ok := qtype.AtomTag(data); ok {
		return e.writeAtom(data, tag)
	}

	return fmt.Errorf("%w: unable to serialize type %T", errs.ErrUnsupportedType, data)
}

// encodeText converts text to the configured character encoding.
func (e *encoder) encodeText(s string) ([]byte, error) {
	if e.w.textEncoding == nil {
		return []byte(s), nil
	}

	out, err := e.w.textEncoding.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", errs.ErrTextEncoding, s, err)
	}

	return out, nil
}
