package ipc

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/qwireio/qwire/endian"
	"github.com/qwireio/qwire/errs"
	"github.com/qwireio/qwire/qtemporal"
	"github.com/qwireio/qwire/qtype"
)

var (
	testEngine = endian.GetNativeEngine()
	qEpoch     = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func newTestWriter(t *testing.T, version int, opts ...Option) *Writer {
	t.Helper()
	w, err := NewWriter(nil, version, opts...)
	require.NoError(t, err)

	return w
}

// frame wraps a payload in the expected message header for the host's
// byte order.
func frame(msgType MessageType, payload []byte) []byte {
	marker := byte(0)
	if endian.IsNativeLittleEndian() {
		marker = 1
	}
	msg := []byte{marker, byte(msgType), 0, 0}
	msg = testEngine.AppendUint32(msg, uint32(headerSize+len(payload)))

	return append(msg, payload...)
}

func u32(n uint32) []byte {
	return testEngine.AppendUint32(nil, n)
}

func u64(n uint64) []byte {
	return testEngine.AppendUint64(nil, n)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

func TestWriter_Null(t *testing.T) {
	w := newTestWriter(t, 3)

	msg, err := w.Write(nil, Async)
	require.NoError(t, err)
	require.Equal(t, frame(Async, []byte{0x65, 0x00}), msg)
}

func TestWriter_Atoms(t *testing.T) {
	cases := []struct {
		name    string
		value   any
		payload []byte
	}{
		{"bool true", true, []byte{0xFF, 1}},
		{"bool false", false, []byte{0xFF, 0}},
		{"byte", byte(0xAB), []byte{0xFC, 0xAB}},
		{"short", int16(-2), cat([]byte{0xFB}, testEngine.AppendUint16(nil, ^uint16(1)))},
		{"int", int32(7), cat([]byte{0xFA}, u32(7))},
		{"long", int64(-1), cat([]byte{0xF9}, u64(^uint64(0)))},
		{"native int as long", 42, cat([]byte{0xF9}, u64(42))},
		{"real", float32(1.5), cat([]byte{0xF8}, u32(0x3FC00000))},
		{"float", float64(1.5), cat([]byte{0xF7}, u64(0x3FF8000000000000))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWriter(t, 3)
			msg, err := w.Write(tc.value, Sync)
			require.NoError(t, err)
			require.Equal(t, frame(Sync, tc.payload), msg)
		})
	}
}

func TestWriter_StringCollapsesSingleChar(t *testing.T) {
	w := newTestWriter(t, 3)

	msg, err := w.Write("a", Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, []byte{0xF6, 'a'}), msg)
}

func TestWriter_StringSingleCharPreserved(t *testing.T) {
	w := newTestWriter(t, 3)

	msg, err := w.Write("a", Sync, SingleCharStrings(true))
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x0A, 0x00}, u32(1), []byte{'a'})), msg)
}

func TestWriter_SingleCharDefaultFromOption(t *testing.T) {
	w := newTestWriter(t, 3, WithSingleCharStrings(true))

	msg, err := w.Write("a", Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x0A, 0x00}, u32(1), []byte{'a'})), msg)

	// Per-call override wins over the writer default.
	msg, err = w.Write("a", Sync, SingleCharStrings(false))
	require.NoError(t, err)
	require.Equal(t, frame(Sync, []byte{0xF6, 'a'}), msg)
}

func TestWriter_Strings(t *testing.T) {
	w := newTestWriter(t, 3)

	msg, err := w.Write("abc", Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x0A, 0x00}, u32(3), []byte("abc"))), msg)

	msg, err = w.Write("", Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x0A, 0x00}, u32(0))), msg)

	// []byte takes the char string path as well.
	msg, err = w.Write([]byte{0x01, 0x02}, Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x0A, 0x00}, u32(2), []byte{0x01, 0x02})), msg)
}

func TestWriter_Symbol(t *testing.T) {
	w := newTestWriter(t, 3)

	msg, err := w.Write(qtype.Symbol("abc"), Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, []byte{0xF5, 'a', 'b', 'c', 0x00}), msg)

	msg, err = w.Write(qtype.Symbol(""), Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, []byte{0xF5, 0x00}), msg)
}

func TestWriter_Guid(t *testing.T) {
	u := uuid.MustParse("dd218ba9-5fd9-4762-a3d1-c14827a8b8d3")

	w := newTestWriter(t, 3)
	msg, err := w.Write(u, Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0xFE}, u[:])), msg)
}

func TestWriter_GuidVersionGate(t *testing.T) {
	u := uuid.New()

	w := newTestWriter(t, 0)
	_, err := w.Write(u, Sync)
	require.ErrorIs(t, err, errs.ErrProtocolVersion)
	require.Contains(t, err.Error(), "Guid")

	w = newTestWriter(t, 2)
	_, err = w.Write(u, Sync)
	require.ErrorIs(t, err, errs.ErrProtocolVersion)

	w = newTestWriter(t, 3)
	_, err = w.Write(u, Sync)
	require.NoError(t, err)
}

func TestWriter_Temporals(t *testing.T) {
	w := newTestWriter(t, 3)

	// time.Time maps to a timestamp atom.
	msg, err := w.Write(qEpoch.Add(time.Nanosecond), Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0xF4}, u64(1))), msg)

	// time.Duration maps to a timespan atom.
	msg, err = w.Write(time.Second, Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0xF0}, u64(uint64(time.Second)))), msg)

	// Wrapped kinds carry their own tag.
	msg, err = w.Write(qtemporal.Date(qEpoch.AddDate(0, 0, 3)), Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0xF2}, u32(3))), msg)

	msg, err = w.Write(qtemporal.Minute(90*time.Minute), Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0xEF}, u32(90))), msg)
}

func TestWriter_TemporalVersionGate(t *testing.T) {
	w := newTestWriter(t, 0)

	_, err := w.Write(qEpoch, Sync)
	require.ErrorIs(t, err, errs.ErrProtocolVersion)

	_, err = w.Write(time.Second, Sync)
	require.ErrorIs(t, err, errs.ErrProtocolVersion)

	// Dates are not gated.
	_, err = w.Write(qtemporal.Date(qEpoch), Sync)
	require.NoError(t, err)

	w = newTestWriter(t, 1)
	_, err = w.Write(qEpoch, Sync)
	require.NoError(t, err)
	_, err = w.Write(time.Second, Sync)
	require.NoError(t, err)
}

func TestWriter_ErrorSignal(t *testing.T) {
	w := newTestWriter(t, 3)

	// Category-only signal reports its category name.
	msg, err := w.Write(qtype.Error{Category: "TypeMismatch"}, Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x80}, []byte("TypeMismatch"), []byte{0x00})), msg)

	// An explicit message wins.
	msg, err = w.Write(qtype.Error{Category: "TypeMismatch", Message: "length"}, Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x80}, []byte("length"), []byte{0x00})), msg)

	// Any Go error routes to the error encoder by interface.
	msg, err = w.Write(errors.New("boom"), Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x80}, []byte("boom"), []byte{0x00})), msg)
}

func TestWriter_UnsupportedType(t *testing.T) {
	w := newTestWriter(t, 3)

	_, err := w.Write(struct{ X int }{1}, Sync)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
	require.Contains(t, err.Error(), "struct")

	_, err = w.Write(map[string]int{"a": 1}, Sync)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestWriter_LengthFieldMatchesBuffer(t *testing.T) {
	values := []any{
		nil,
		int64(1),
		"",
		"abc",
		[]int64{},
		[]any{},
		[]any{int64(1), "ab", qtype.Symbol("s")},
		qtype.Dict{Keys: []qtype.Symbol{"a"}, Values: []int64{1}},
	}
	w := newTestWriter(t, 3)
	for _, v := range values {
		msg, err := w.Write(v, Sync)
		require.NoError(t, err)
		require.Equal(t, uint32(len(msg)), testEngine.Uint32(msg[4:8]), "value %#v", v)
	}
}

func TestWriter_SinkReceivesMessage(t *testing.T) {
	var sink bytes.Buffer
	w, err := NewWriter(&sink, 3)
	require.NoError(t, err)

	msg, err := w.Write(int64(1), Async)
	require.NoError(t, err)
	require.Nil(t, msg)

	expected, err := newTestWriter(t, 3).Write(int64(1), Async)
	require.NoError(t, err)
	require.Equal(t, expected, sink.Bytes())
}

func TestWriter_NothingSentOnFailure(t *testing.T) {
	var sink bytes.Buffer
	w, err := NewWriter(&sink, 3)
	require.NoError(t, err)

	_, err = w.Write([]any{int64(1), struct{}{}}, Async)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
	require.Zero(t, sink.Len())
}

func TestWriter_Idempotence(t *testing.T) {
	value := qtype.Dict{
		Keys:   []qtype.Symbol{"a", "b"},
		Values: []any{[]int64{1, 2}, "text"},
	}

	first, err := newTestWriter(t, 3).Write(value, Sync)
	require.NoError(t, err)
	second, err := newTestWriter(t, 3).Write(value, Sync)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestWriter_TextEncoding(t *testing.T) {
	// Default Latin-1 maps é to a single byte.
	w := newTestWriter(t, 3)
	msg, err := w.Write("café", Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x0A, 0x00}, u32(4), []byte{'c', 'a', 'f', 0xE9})), msg)

	// Unmappable text fails instead of being silently mangled.
	_, err = w.Write("日本", Sync)
	require.ErrorIs(t, err, errs.ErrTextEncoding)

	// nil encoding passes raw UTF-8 through.
	w = newTestWriter(t, 3, WithTextEncoding(nil))
	raw := []byte("日本")
	msg, err = w.Write("日本", Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x0A, 0x00}, u32(uint32(len(raw))), raw)), msg)

	// Alternate encodings are honored.
	w = newTestWriter(t, 3, WithTextEncoding(charmap.ISO8859_5))
	msg, err = w.Write(qtype.Symbol("д"), Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, []byte{0xF5, 0xD4, 0x00}), msg)
}

func TestWriter_SingleCharCollapseFollowsSourceChars(t *testing.T) {
	// One source character that encodes to one byte collapses to a char
	// atom under the default Latin-1.
	w := newTestWriter(t, 3)
	msg, err := w.Write("é", Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, []byte{0xF6, 0xE9}), msg)

	// With raw UTF-8 passthrough the same single character needs two
	// encoded bytes and cannot be a char atom; it stays a char list of
	// its encoded bytes.
	w = newTestWriter(t, 3, WithTextEncoding(nil))
	msg, err = w.Write("é", Sync)
	require.NoError(t, err)
	require.Equal(t, frame(Sync, cat([]byte{0x0A, 0x00}, u32(2), []byte("é"))), msg)
}

func TestMessageType_String(t *testing.T) {
	require.Equal(t, "async", Async.String())
	require.Equal(t, "sync", Sync.String())
	require.Equal(t, "response", Response.String())
	require.Equal(t, "unknown", MessageType(9).String())
}
