package qtype

// Symbol is an interned q name. On the wire it is the symbol's bytes
// followed by a single zero byte, with no length prefix; the empty symbol
// is a lone zero byte.
type Symbol string

// List pairs a slice with an explicitly declared element tag. It is the way
// to send a vector whose tag cannot be inferred from the Go element type:
// table columns (an empty or ambiguous column must still carry its declared
// type), byte vectors (a bare []byte is treated as a char string), or
// temporal vectors with a non-default unit such as a date list.
//
// Tag may be given in either atom or vector form; the writer normalizes it.
// A zero Tag means "infer from the element type".
type List struct {
	Tag  Tag
	Data any
}

// Dict is an ordered key/value pair of lists (or atoms) with matching
// cardinality. On the wire it is the dictionary tag followed by the two
// components encoded back to back.
//
// Cardinality is not validated before encoding; the writer reproduces
// keys-then-values framing for whatever lengths it is given.
type Dict struct {
	Keys   any
	Values any
}

// Table is a column-oriented table: column names plus one declared-tag
// column vector per name. On the wire it is a typed dictionary whose keys
// are the column-name symbol list and whose values are a general list of
// column vectors.
type Table struct {
	Columns []string
	Values  []List
}

// KeyedTable splits a table into key columns and data columns. At the wire
// level it is a plain dictionary of two tables; the distinction is
// type-level only.
type KeyedTable struct {
	Keys   Table
	Values Table
}

// Lambda is a deferred function reference carrying q source text, e.g.
// "{x+y}".
type Lambda struct {
	Expression string
}

// Projection is a partially applied function carrying its bound parameter
// values in order. Each parameter is encoded independently, like a general
// list element but without a general-list wrapper.
type Projection struct {
	Params []any
}

// Error is a q error signal ('err). Message is optional; when absent the
// category name stands in for it, so an Error built from just a category
// encodes as that category's name.
//
// Error implements the error interface, and the writer routes any value
// implementing error to the error encoder, so plain Go errors signal their
// Error() text.
type Error struct {
	Category string
	Message  string
}

// Error returns the explicit message when present, else the category name.
func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Category
}
