package ipc

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/qwireio/qwire/errs"
	"github.com/qwireio/qwire/qtemporal"
	"github.com/qwireio/qwire/qtype"
)

// tagByte converts a tag to its wire byte. Negative atom tags go through
// int8 first; converting the typed constants directly would not compile.
func tagByte(t qtype.Tag) byte {
	return byte(int8(t))
}

// writeNull emits the generic null: the null tag plus one filler byte.
func (e *encoder) writeNull() error {
	e.buf.MustWriteByte(tagByte(qtype.NullTag))
	e.buf.MustWriteByte(0)

	return nil
}

// writeAtom emits one tag byte followed by the fixed-width payload for that
// tag. Boolean values are normalized to a canonical 0/1 byte.
func (e *encoder) writeAtom(v any, tag qtype.Tag) error {
	if _, ok := qtype.Width(tag); !ok {
		return fmt.Errorf("%w: no fixed-width layout for %s", errs.ErrUnsupportedType, tag)
	}

	e.buf.MustWriteByte(tagByte(tag))

	engine := e.w.engine
	switch tag {
	case qtype.BoolAtom:
		b, ok := v.(bool)
		if !ok {
			return e.atomMismatch(v, tag)
		}
		if b {
			e.buf.MustWriteByte(1)
		} else {
			e.buf.MustWriteByte(0)
		}
	case qtype.ByteAtom, qtype.CharAtom:
		b, ok := v.(byte)
		if !ok {
			return e.atomMismatch(v, tag)
		}
		e.buf.MustWriteByte(b)
	case qtype.ShortAtom:
		n, ok := v.(int16)
		if !ok {
			return e.atomMismatch(v, tag)
		}
		e.buf.B = engine.AppendUint16(e.buf.B, uint16(n))
	case qtype.IntAtom:
		n, ok := v.(int32)
		if !ok {
			return e.atomMismatch(v, tag)
		}
		e.buf.B = engine.AppendUint32(e.buf.B, uint32(n))
	case qtype.LongAtom:
		switch n := v.(type) {
		case int64:
			e.buf.B = engine.AppendUint64(e.buf.B, uint64(n))
		case int:
			e.buf.B = engine.AppendUint64(e.buf.B, uint64(int64(n)))
		default:
			return e.atomMismatch(v, tag)
		}
	case qtype.RealAtom:
		f, ok := v.(float32)
		if !ok {
			return e.atomMismatch(v, tag)
		}
		e.buf.B = engine.AppendUint32(e.buf.B, math.Float32bits(f))
	case qtype.FloatAtom:
		f, ok := v.(float64)
		if !ok {
			return e.atomMismatch(v, tag)
		}
		e.buf.B = engine.AppendUint64(e.buf.B, math.Float64bits(f))
	default:
		return fmt.Errorf("%w: no atom encoder for %s", errs.ErrUnsupportedType, tag)
	}

	return nil
}

func (e *encoder) atomMismatch(v any, tag qtype.Tag) error {
	return fmt.Errorf("%w: cannot pack %T into %s layout", errs.ErrUnsupportedType, v, tag)
}

// writeText encodes s and emits it as a char string. The single-char
// collapse is decided on the source character count, not the encoded byte
// count, so the decision does not shift under a multi-byte text encoding;
// a character that does not fit one encoded byte stays a char list.
func (e *encoder) writeText(s string) error {
	text, err := e.encodeText(s)
	if err != nil {
		return err
	}

	if !e.opts.SingleCharStrings && utf8.RuneCountInString(s) == 1 && len(text) == 1 {
		return e.writeAtom(text[0], qtype.CharAtom)
	}

	e.writeCharList(text)

	return nil
}

// writeString emits a byte slice as a char string. A single byte collapses
// to a char atom unless the effective options preserve it.
func (e *encoder) writeString(text []byte) error {
	if !e.opts.SingleCharStrings && len(text) == 1 {
		return e.writeAtom(text[0], qtype.CharAtom)
	}

	e.writeCharList(text)

	return nil
}

// writeCharList emits the char list layout: list tag, attribute byte,
// 4-byte count, raw bytes.
func (e *encoder) writeCharList(text []byte) {
	e.buf.MustWriteByte(tagByte(qtype.CharList))
	e.buf.MustWriteByte(0)
	e.buf.B = e.w.engine.AppendUint32(e.buf.B, uint32(len(text)))
	e.buf.MustWrite(text)
}

// writeSymbol emits the symbol tag followed by the symbol's bytes and a
// terminating zero byte. The empty symbol is the tag plus a lone zero.
func (e *encoder) writeSymbol(s qtype.Symbol) error {
	text, err := e.encodeText(string(s))
	if err != nil {
		return err
	}

	e.buf.MustWriteByte(tagByte(qtype.SymbolAtom))
	e.writeSymbolBody(text)

	return nil
}

// writeSymbolBody writes one symbol's bytes and zero terminator, shared by
// the scalar symbol and symbol-list paths.
func (e *encoder) writeSymbolBody(text []byte) {
	if len(text) > 0 {
		e.buf.MustWrite(text)
	}
	e.buf.MustWriteByte(0)
}

// writeGUID emits a guid atom. Guids require protocol version 3.
func (e *encoder) writeGUID(u uuid.UUID) error {
	if e.w.protocolVersion < 3 {
		return fmt.Errorf("%w: Guid not supported pre kdb+ v3.0", errs.ErrProtocolVersion)
	}

	e.buf.MustWriteByte(tagByte(qtype.GuidAtom))
	e.buf.MustWrite(u[:])

	return nil
}

// writeTemporal emits a temporal atom: its tag byte followed by the raw
// epoch-relative payload. Timestamps and timespans require protocol
// version 1.
func (e *encoder) writeTemporal(v qtemporal.Temporal) error {
	tag := v.Tag()
	if e.w.protocolVersion < 1 && (tag == qtype.TimestampAtom || tag == qtype.TimespanAtom) {
		return fmt.Errorf("%w: data type 0x%x not supported pre kdb+ v2.6", errs.ErrProtocolVersion, tagByte(tag))
	}

	e.buf.MustWriteByte(tagByte(tag))

	var err error
	e.buf.B, err = qtemporal.AppendRaw(e.buf.B, e.w.engine, v)

	return err
}

// writeError emits an error signal: the error tag, the message bytes, and
// a terminating zero byte. The message comes from the signal's Error()
// text; a qtype.Error with no explicit message reports its category name.
func (e *encoder) writeError(sig error) error {
	text, err := e.encodeText(sig.Error())
	if err != nil {
		return err
	}

	e.buf.MustWriteByte(tagByte(qtype.ErrorTag))
	e.buf.MustWrite(text)
	e.buf.MustWriteByte(0)

	return nil
}
