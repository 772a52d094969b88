// Package qtype defines the q type tag catalogue and the wrapper types the
// IPC writer dispatches on.
//
// Tags form a fixed, closed enumeration shared with the q wire format: atom
// tags are negative, the matching vector tag is the negation, and a handful
// of structural tags (general list, table, dictionary, functions, error)
// sit outside the atom/vector pairing. The writer never invents a tag that
// is not listed here.
package qtype

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tag is a signed byte identifying a q kind on the wire.
type Tag int8

// Atom tags. Each atom is the tag byte followed by a fixed-width payload.
const (
	BoolAtom      Tag = -1
	GuidAtom      Tag = -2
	ByteAtom      Tag = -4
	ShortAtom     Tag = -5
	IntAtom       Tag = -6
	LongAtom      Tag = -7
	RealAtom      Tag = -8
	FloatAtom     Tag = -9
	CharAtom      Tag = -10
	SymbolAtom    Tag = -11
	TimestampAtom Tag = -12
	MonthAtom     Tag = -13
	DateAtom      Tag = -14
	DatetimeAtom  Tag = -15
	TimespanAtom  Tag = -16
	MinuteAtom    Tag = -17
	SecondAtom    Tag = -18
	TimeAtom      Tag = -19
)

// Vector tags are the negated atom tags, except the general list which is
// self-describing and holds heterogeneous, independently encoded elements.
const (
	GeneralList   Tag = 0
	BoolList      Tag = 1
	GuidList      Tag = 2
	ByteList      Tag = 4
	ShortList     Tag = 5
	IntList       Tag = 6
	LongList      Tag = 7
	RealList      Tag = 8
	FloatList     Tag = 9
	CharList      Tag = 10
	SymbolList    Tag = 11
	TimestampList Tag = 12
	MonthList     Tag = 13
	DateList      Tag = 14
	DatetimeList  Tag = 15
	TimespanList  Tag = 16
	MinuteList    Tag = 17
	SecondList    Tag = 18
	TimeList      Tag = 19
)

// Structural tags.
const (
	TableTag      Tag = 98
	DictTag       Tag = 99
	LambdaTag     Tag = 100
	NullTag       Tag = 101
	ProjectionTag Tag = 104
	ErrorTag      Tag = -128
)

var tagNames = map[Tag]string{
	BoolAtom:      "boolean",
	GuidAtom:      "guid",
	ByteAtom:      "byte",
	ShortAtom:     "short",
	IntAtom:       "int",
	LongAtom:      "long",
	RealAtom:      "real",
	FloatAtom:     "float",
	CharAtom:      "char",
	SymbolAtom:    "symbol",
	TimestampAtom: "timestamp",
	MonthAtom:     "month",
	DateAtom:      "date",
	DatetimeAtom:  "datetime",
	TimespanAtom:  "timespan",
	MinuteAtom:    "minute",
	SecondAtom:    "second",
	TimeAtom:      "time",
	GeneralList:   "general list",
	TableTag:      "table",
	DictTag:       "dictionary",
	LambdaTag:     "lambda",
	NullTag:       "null",
	ProjectionTag: "projection",
	ErrorTag:      "error",
}

// String returns the q name of the tag, with vector tags rendered as
// "<atom name> list".
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	if t > GeneralList && t <= TimeList {
		if name, ok := tagNames[-t]; ok {
			return name + " list"
		}
	}

	return fmt.Sprintf("tag(%d)", int8(t))
}

// Atom returns the atom (negative) form of an atom or vector tag.
// Structural tags and the general list are returned unchanged.
func (t Tag) Atom() Tag {
	if t > GeneralList && t <= TimeList {
		return -t
	}

	return t
}

// List returns the vector (positive) form of an atom or vector tag.
// Structural tags and the general list are returned unchanged.
func (t Tag) List() Tag {
	if t >= TimeAtom && t <= BoolAtom {
		return -t
	}

	return t
}

// atomWidths maps each atom tag to its fixed payload width in bytes.
var atomWidths = map[Tag]int{
	BoolAtom:      1,
	GuidAtom:      16,
	ByteAtom:      1,
	ShortAtom:     2,
	IntAtom:       4,
	LongAtom:      8,
	RealAtom:      4,
	FloatAtom:     8,
	CharAtom:      1,
	TimestampAtom: 8,
	MonthAtom:     4,
	DateAtom:      4,
	DatetimeAtom:  8,
	TimespanAtom:  8,
	MinuteAtom:    4,
	SecondAtom:    4,
	TimeAtom:      4,
}

// Width returns the fixed payload width of an atom tag in bytes.
// The second return value is false for tags with no fixed-width layout
// (symbols, vectors, structural tags).
func Width(t Tag) (int, bool) {
	w, ok := atomWidths[t]
	return w, ok
}

// AtomTag maps a native Go scalar to its q atom tag. It covers the primitive
// kinds with no dedicated writer; strings, symbols, guids and temporals are
// dispatched separately.
func AtomTag(v any) (Tag, bool) {
	switch v.(type) {
	case bool:
		return BoolAtom, true
	case byte:
		return ByteAtom, true
	case int16:
		return ShortAtom, true
	case int32:
		return IntAtom, true
	case int64, int:
		return LongAtom, true
	case float32:
		return RealAtom, true
	case float64:
		return FloatAtom, true
	default:
		return 0, false
	}
}

// ListTag maps a native Go slice to its q vector tag. []any maps to the
// general list. []string is deliberately absent: it is ambiguous between a
// symbol list and a general list of char strings, so callers must pick one
// with []Symbol or an explicit List.
func ListTag(v any) (Tag, bool) {
	switch v.(type) {
	case []bool:
		return BoolList, true
	case []byte:
		return CharList, true
	case []int16:
		return ShortList, true
	case []int32:
		return IntList, true
	case []int64, []int:
		return LongList, true
	case []float32:
		return RealList, true
	case []float64:
		return FloatList, true
	case []Symbol:
		return SymbolList, true
	case []uuid.UUID:
		return GuidList, true
	case []time.Time:
		return TimestampList, true
	case []time.Duration:
		return TimespanList, true
	case []any:
		return GeneralList, true
	default:
		return 0, false
	}
}
