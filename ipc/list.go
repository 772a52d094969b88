package ipc

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/qwireio/qwire/errs"
	"github.com/qwireio/qwire/qtemporal"
	"github.com/qwireio/qwire/qtype"
)

// writeList emits a homogeneous vector. tag is the declared element tag in
// either atom or vector form; zero means "infer from the element type".
//
// Element payload layout follows the slice's native type. A declared tag
// that disagrees with the element type is not validated here; declared tags
// matter where they drive structure (symbol termination, temporal units,
// guid gating) and for empty columns that must still carry a type.
func (e *encoder) writeList(data any, tag qtype.Tag) error {
	if tag == 0 {
		inferred, ok := qtype.ListTag(data)
		if !ok {
			return fmt.Errorf("%w: unable to serialize %T as a list", errs.ErrUnsupportedType, data)
		}
		tag = inferred
	}
	atom := tag.Atom()

	if e.w.protocolVersion < 1 && (atom == qtype.TimestampAtom || atom == qtype.TimespanAtom) {
		return fmt.Errorf("%w: data type 0x%x not supported pre kdb+ v2.6", errs.ErrProtocolVersion, tagByte(atom.List()))
	}

	switch atom {
	case qtype.GeneralList:
		items, ok := data.([]any)
		if !ok {
			return fmt.Errorf("%w: general list requires []any, got %T", errs.ErrUnsupportedType, data)
		}
		return e.writeGeneralList(items)
	case qtype.CharAtom:
		switch v := data.(type) {
		case []byte:
			return e.writeString(v)
		case string:
			return e.writeText(v)
		default:
			return fmt.Errorf("%w: char list requires []byte or string, got %T", errs.ErrUnsupportedType, data)
		}
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice {
		return fmt.Errorf("%w: unable to serialize %T as a list", errs.ErrUnsupportedType, data)
	}

	e.buf.MustWriteByte(tagByte(atom.List()))
	e.buf.MustWriteByte(0) // attribute byte
	e.buf.B = e.w.engine.AppendUint32(e.buf.B, uint32(rv.Len()))

	engine := e.w.engine
	switch v := data.(type) {
	case []bool:
		for _, b := range v {
			if b {
				e.buf.MustWriteByte(1)
			} else {
				e.buf.MustWriteByte(0)
			}
		}
	case []byte:
		e.buf.MustWrite(v)
	case []int16:
		for _, n := range v {
			e.buf.B = engine.AppendUint16(e.buf.B, uint16(n))
		}
	case []int32:
		for _, n := range v {
			e.buf.B = engine.AppendUint32(e.buf.B, uint32(n))
		}
	case []int64:
		for _, n := range v {
			e.buf.B = engine.AppendUint64(e.buf.B, uint64(n))
		}
	case []int:
		for _, n := range v {
			e.buf.B = engine.AppendUint64(e.buf.B, uint64(int64(n)))
		}
	case []float32:
		for _, f := range v {
			e.buf.B = engine.AppendUint32(e.buf.B, math.Float32bits(f))
		}
	case []float64:
		for _, f := range v {
			e.buf.B = engine.AppendUint64(e.buf.B, math.Float64bits(f))
		}
	case []qtype.Symbol:
		for _, s := range v {
			text, err := e.encodeText(string(s))
			if err != nil {
				return err
			}
			e.writeSymbolBody(text)
		}
	case []string:
		if atom != qtype.SymbolAtom {
			return fmt.Errorf("%w: []string requires an explicit symbol tag, got %s", errs.ErrUnsupportedType, tag)
		}
		for _, s := range v {
			text, err := e.encodeText(s)
			if err != nil {
				return err
			}
			e.writeSymbolBody(text)
		}
	case []uuid.UUID:
		if e.w.protocolVersion < 3 {
			return fmt.Errorf("%w: Guid not supported pre kdb+ v3.0", errs.ErrProtocolVersion)
		}
		for _, u := range v {
			e.buf.MustWrite(u[:])
		}
	case []time.Time:
		var err error
		e.buf.B, err = qtemporal.AppendInstants(e.buf.B, engine, atom, v)
		if err != nil {
			return err
		}
	case []time.Duration:
		var err error
		e.buf.B, err = qtemporal.AppendSpans(e.buf.B, engine, atom, v)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unable to serialize %T as a %s list", errs.ErrUnsupportedType, data, atom)
	}

	return nil
}

// writeGeneralList emits the self-describing heterogeneous list: the
// general-list tag, attribute byte and 4-byte count, then each element
// dispatched independently.
func (e *encoder) writeGeneralList(items []any) error {
	e.buf.MustWriteByte(tagByte(qtype.GeneralList))
	e.buf.MustWriteByte(0)
	e.buf.B = e.w.engine.AppendUint32(e.buf.B, uint32(len(items)))

	for _, item := range items {
		if err := e.write(item); err != nil {
			return err
		}
	}

	return nil
}

// writeDict emits a dictionary (or keyed table): the dictionary tag, then
// the keys and values encoded back to back. Cardinality of the two sides
// is not validated.
func (e *encoder) writeDict(keys, values any) error {
	e.buf.MustWriteByte(tagByte(qtype.DictTag))

	if err := e.write(keys); err != nil {
		return err
	}

	return e.write(values)
}

// writeTable emits a table as a typed dictionary: table tag, attribute
// byte, dictionary tag, the column names as a symbol list, then a general
// list of the column vectors, each written with its declared element tag.
func (e *encoder) writeTable(t qtype.Table) error {
	e.buf.MustWriteByte(tagByte(qtype.TableTag))
	e.buf.MustWriteByte(0)
	e.buf.MustWriteByte(tagByte(qtype.DictTag))

	if err := e.writeList(t.Columns, qtype.SymbolList); err != nil {
		return err
	}

	e.buf.MustWriteByte(tagByte(qtype.GeneralList))
	e.buf.MustWriteByte(0)
	e.buf.B = e.w.engine.AppendUint32(e.buf.B, uint32(len(t.Values)))

	for _, col := range t.Values {
		if err := e.writeList(col.Data, col.Tag); err != nil {
			return err
		}
	}

	return nil
}

// writeLambda emits a lambda: its tag, an empty-context byte, then the
// expression text as a char string.
func (e *encoder) writeLambda(l qtype.Lambda) error {
	e.buf.MustWriteByte(tagByte(qtype.LambdaTag))
	e.buf.MustWriteByte(0)

	return e.writeText(l.Expression)
}

// writeProjection emits a projection: its tag and 4-byte parameter count
// (no attribute byte), then each bound parameter dispatched in order.
func (e *encoder) writeProjection(p qtype.Projection) error {
	e.buf.MustWriteByte(tagByte(qtype.ProjectionTag))
	e.buf.B = e.w.engine.AppendUint32(e.buf.B, uint32(len(p.Params)))

	for _, param := range p.Params {
		if err := e.write(param); err != nil {
			return err
		}
	}

	return nil
}
