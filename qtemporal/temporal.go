// Package qtemporal converts host-native time values to the q protocol's
// raw temporal representation.
//
// Every q temporal kind is an epoch-relative count against the q epoch of
// 2000-01-01T00:00:00Z: timestamps are nanoseconds since the epoch, dates
// are days, months are whole months since 2000.01, datetimes are fractional
// days as a float, and the span kinds (timespan, minute, second, time) are
// counts of their unit. The writer never puts a host time.Time or
// time.Duration on the wire without passing it through this package first.
package qtemporal

import (
	"fmt"
	"math"
	"time"

	"github.com/qwireio/qwire/endian"
	"github.com/qwireio/qwire/errs"
	"github.com/qwireio/qwire/qtype"
)

const (
	// epochUnixSec is the q epoch (2000-01-01T00:00:00Z) in Unix seconds.
	epochUnixSec int64 = 946684800

	// epochUnixDays is the q epoch in whole days since the Unix epoch.
	epochUnixDays int64 = 10957

	secondsPerDay int64   = 86400
	millisPerDay  float64 = 86400000
)

// Temporal pairs a host time value with the q temporal tag it should encode
// as. The instant kinds (timestamp, month, date, datetime) carry a
// time.Time; the span kinds (timespan, minute, second, time) carry a
// time.Duration.
type Temporal struct {
	tag  qtype.Tag
	inst time.Time
	span time.Duration
}

// Timestamp wraps t as a q timestamp (nanoseconds since the q epoch).
func Timestamp(t time.Time) Temporal {
	return Temporal{tag: qtype.TimestampAtom, inst: t}
}

// Month wraps t as a q month (whole months since 2000.01).
func Month(t time.Time) Temporal {
	return Temporal{tag: qtype.MonthAtom, inst: t}
}

// Date wraps t as a q date (whole days since the q epoch).
func Date(t time.Time) Temporal {
	return Temporal{tag: qtype.DateAtom, inst: t}
}

// DateTime wraps t as a q datetime (fractional days since the q epoch).
func DateTime(t time.Time) Temporal {
	return Temporal{tag: qtype.DatetimeAtom, inst: t}
}

// Timespan wraps d as a q timespan (nanoseconds).
func Timespan(d time.Duration) Temporal {
	return Temporal{tag: qtype.TimespanAtom, span: d}
}

// Minute wraps d as a q minute (whole minutes).
func Minute(d time.Duration) Temporal {
	return Temporal{tag: qtype.MinuteAtom, span: d}
}

// Second wraps d as a q second (whole seconds).
func Second(d time.Duration) Temporal {
	return Temporal{tag: qtype.SecondAtom, span: d}
}

// TimeOfDay wraps d as a q time (milliseconds since midnight).
func TimeOfDay(d time.Duration) Temporal {
	return Temporal{tag: qtype.TimeAtom, span: d}
}

// Tag returns the q temporal tag the value encodes as.
func (t Temporal) Tag() qtype.Tag {
	return t.tag
}

// Time returns the wrapped instant. Meaningful only for the instant kinds.
func (t Temporal) Time() time.Time {
	return t.inst
}

// Duration returns the wrapped span. Meaningful only for the span kinds.
func (t Temporal) Duration() time.Duration {
	return t.span
}

// floorDiv divides rounding toward negative infinity, so pre-epoch values
// land on the correct day/month boundary.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}

	return q
}

// RawInstant converts an instant to the integer raw count for tag.
// Supported tags: timestamp, month, date. Datetime is a float count and has
// its own conversion.
func RawInstant(t time.Time, tag qtype.Tag) (int64, error) {
	switch tag {
	case qtype.TimestampAtom:
		return t.UnixNano() - epochUnixSec*int64(time.Second), nil
	case qtype.MonthAtom:
		y, m, _ := t.UTC().Date()
		return int64((y-2000)*12 + int(m) - 1), nil
	case qtype.DateAtom:
		return floorDiv(t.Unix(), secondsPerDay) - epochUnixDays, nil
	default:
		return 0, fmt.Errorf("%w: %s is not an integer instant tag", errs.ErrUnsupportedType, tag)
	}
}

// RawDateTime converts an instant to the q datetime raw count: fractional
// days since the q epoch.
func RawDateTime(t time.Time) float64 {
	return float64(t.UnixMilli())/millisPerDay - float64(epochUnixDays)
}

// RawSpan converts a duration to the integer raw count for tag.
// Supported tags: timespan, minute, second, time.
func RawSpan(d time.Duration, tag qtype.Tag) (int64, error) {
	switch tag {
	case qtype.TimespanAtom:
		return d.Nanoseconds(), nil
	case qtype.MinuteAtom:
		return int64(d / time.Minute), nil
	case qtype.SecondAtom:
		return int64(d / time.Second), nil
	case qtype.TimeAtom:
		return int64(d / time.Millisecond), nil
	default:
		return 0, fmt.Errorf("%w: %s is not a span tag", errs.ErrUnsupportedType, tag)
	}
}

// AppendRaw appends the fixed-width wire payload of v (no tag byte) to dst
// and returns the extended slice.
func AppendRaw(dst []byte, engine endian.EndianEngine, v Temporal) ([]byte, error) {
	switch v.tag {
	case qtype.TimestampAtom:
		raw, err := RawInstant(v.inst, v.tag)
		if err != nil {
			return dst, err
		}
		return engine.AppendUint64(dst, uint64(raw)), nil
	case qtype.MonthAtom, qtype.DateAtom:
		raw, err := RawInstant(v.inst, v.tag)
		if err != nil {
			return dst, err
		}
		return engine.AppendUint32(dst, uint32(int32(raw))), nil
	case qtype.DatetimeAtom:
		return engine.AppendUint64(dst, math.Float64bits(RawDateTime(v.inst))), nil
	case qtype.TimespanAtom:
		raw, err := RawSpan(v.span, v.tag)
		if err != nil {
			return dst, err
		}
		return engine.AppendUint64(dst, uint64(raw)), nil
	case qtype.MinuteAtom, qtype.SecondAtom, qtype.TimeAtom:
		raw, err := RawSpan(v.span, v.tag)
		if err != nil {
			return dst, err
		}
		return engine.AppendUint32(dst, uint32(int32(raw))), nil
	default:
		return dst, fmt.Errorf("%w: %s is not a temporal tag", errs.ErrUnsupportedType, v.tag)
	}
}

// AppendInstants bulk-converts a []time.Time vector into contiguous raw
// payloads for the given atom tag (timestamp, month, date or datetime) and
// appends them to dst.
func AppendInstants(dst []byte, engine endian.EndianEngine, tag qtype.Tag, times []time.Time) ([]byte, error) {
	switch tag {
	case qtype.TimestampAtom, qtype.MonthAtom, qtype.DateAtom, qtype.DatetimeAtom:
	default:
		return dst, fmt.Errorf("%w: %s is not an instant tag", errs.ErrUnsupportedType, tag)
	}

	var err error
	for _, t := range times {
		dst, err = AppendRaw(dst, engine, Temporal{tag: tag, inst: t})
		if err != nil {
			return dst, err
		}
	}

	return dst, nil
}

// AppendSpans bulk-converts a []time.Duration vector into contiguous raw
// payloads for the given atom tag (timespan, minute, second or time) and
// appends them to dst.
func AppendSpans(dst []byte, engine endian.EndianEngine, tag qtype.Tag, spans []time.Duration) ([]byte, error) {
	switch tag {
	case qtype.TimespanAtom, qtype.MinuteAtom, qtype.SecondAtom, qtype.TimeAtom:
	default:
		return dst, fmt.Errorf("%w: %s is not a span tag", errs.ErrUnsupportedType, tag)
	}

	var err error
	for _, d := range spans {
		dst, err = AppendRaw(dst, engine, Temporal{tag: tag, span: d})
		if err != nil {
			return dst, err
		}
	}

	return dst, nil
}
