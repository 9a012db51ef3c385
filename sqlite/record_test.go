package sqlite

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescan/litescan/util"
)

func TestParseRecordMixedColumns(t *testing.T) {
	// Header 0x04 0x04 0x00 0x09: length 4 counting itself, then serial
	// types 4 (32-bit int), 0 (NULL), 9 (constant one).
	data := []byte{0x04, 0x04, 0x00, 0x09, 0x00, 0x01, 0xe2, 0x40}
	record, err := ParseRecord(data)
	require.NoError(t, err)
	require.Len(t, record.Values, 3)

	assert.Equal(t, IntegerValue{Int: 123456}, record.Values[0])
	assert.Equal(t, NullValue{}, record.Values[1])
	assert.Equal(t, IntegerValue{Int: 1}, record.Values[2])
}

func TestParseRecordTextAndBlob(t *testing.T) {
	record, err := ParseRecord(buildRecord(fxText("hello"), fxBlob([]byte{0xde, 0xad}), fxText("")))
	require.NoError(t, err)
	require.Len(t, record.Values, 3)

	assert.Equal(t, TextValue{Text: "hello"}, record.Values[0])
	assert.Equal(t, BlobValue{Bytes: []byte{0xde, 0xad}}, record.Values[1])
	assert.Equal(t, TextValue{Text: ""}, record.Values[2])
}

func TestParseRecordIntegerWidths(t *testing.T) {
	cases := []struct {
		name   string
		serial uint64
		body   []byte
		want   int64
	}{
		{"int8 positive", 1, []byte{0x7f}, 127},
		{"int8 negative", 1, []byte{0xff}, -1},
		{"int16 negative", 2, []byte{0x80, 0x00}, -32768},
		{"int24 negative", 3, []byte{0xff, 0xff, 0xfe}, -2},
		{"int24 positive", 3, []byte{0x01, 0x00, 0x00}, 65536},
		{"int32 negative", 4, []byte{0xff, 0xff, 0xff, 0xff}, -1},
		{"int48 negative", 5, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xfd}, -3},
		{"int48 positive", 5, []byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x00}, 65536},
		{"int64", 6, util.AppendUB8(nil, uint64(math.MaxInt64)), math.MaxInt64},
		{"int64 negative", 6, util.AppendUB8(nil, ^uint64(0)), -1},
		{"zero constant", 8, nil, 0},
		{"one constant", 9, nil, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record, err := ParseRecord(buildRecord(fixtureValue{serial: tc.serial, body: tc.body}))
			require.NoError(t, err)
			require.Len(t, record.Values, 1)
			assert.Equal(t, IntegerValue{Int: tc.want}, record.Values[0])
		})
	}
}

func TestParseRecordFloat(t *testing.T) {
	body := util.AppendUB8(nil, math.Float64bits(3.25))
	record, err := ParseRecord(buildRecord(fixtureValue{serial: 7, body: body}))
	require.NoError(t, err)
	require.Len(t, record.Values, 1)
	assert.Equal(t, FloatValue{Float: 3.25}, record.Values[0])
}

func TestParseRecordReservedSerialTypes(t *testing.T) {
	for _, serial := range []uint64{10, 11} {
		_, err := ParseRecord(buildRecord(fixtureValue{serial: serial}))
		assert.True(t, errors.Is(err, ErrBadSerialType), "serial type %d", serial)
	}
}

func TestParseRecordHugeSerialType(t *testing.T) {
	// A nine-0xFF serial-type varint declares a content size near 2^63,
	// which would wrap a signed int; it must fail as truncated, not crash.
	data := append([]byte{0x0a}, bytes.Repeat([]byte{0xff}, 9)...)
	_, err := ParseRecord(data)
	assert.True(t, errors.Is(err, ErrRecordTruncated))

	// Even (blob) variant of the same overflow.
	data = append([]byte{0x0a}, bytes.Repeat([]byte{0xff}, 8)...)
	data = append(data, 0xfe)
	_, err = ParseRecord(data)
	assert.True(t, errors.Is(err, ErrRecordTruncated))
}

func TestParseRecordInvalidUTF8(t *testing.T) {
	_, err := ParseRecord(buildRecord(fixtureValue{serial: 13 + 2*2, body: []byte{0xff, 0xfe}}))
	assert.True(t, errors.Is(err, ErrInvalidText))
}

func TestParseRecordTruncated(t *testing.T) {
	// Header promises a 4-byte integer but the body ends early.
	_, err := ParseRecord([]byte{0x02, 0x04, 0x00, 0x01})
	assert.True(t, errors.Is(err, ErrRecordTruncated))

	// Header length exceeds the payload.
	_, err = ParseRecord([]byte{0x7f, 0x00})
	assert.True(t, errors.Is(err, ErrRecordTruncated))

	// Empty payload cannot even hold the header-length varint.
	_, err = ParseRecord(nil)
	assert.True(t, errors.Is(err, ErrBadVarint))
}

func TestParseRecordEmptyHeader(t *testing.T) {
	// A record with zero columns: the header is just its own length byte.
	record, err := ParseRecord([]byte{0x01})
	require.NoError(t, err)
	assert.Empty(t, record.Values)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NULL", NullValue{}.String())
	assert.Equal(t, "-42", IntegerValue{Int: -42}.String())
	assert.Equal(t, "3.25", FloatValue{Float: 3.25}.String())
	assert.Equal(t, "hello", TextValue{Text: "hello"}.String())
	assert.Equal(t, "[1 2]", BlobValue{Bytes: []byte{1, 2}}.String())
}
