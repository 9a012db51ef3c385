package sqlite

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/juju/errors"

	"github.com/litescan/litescan/util"
)

// ValueType tags the five value shapes a record column can decode to.
type ValueType int

const (
	ValueTypeNull ValueType = iota
	ValueTypeInteger
	ValueTypeFloat
	ValueTypeBlob
	ValueTypeText
)

// Value is one decoded column value. The set of implementations is closed:
// NullValue, IntegerValue, FloatValue, BlobValue and TextValue.
type Value interface {
	DataType() ValueType
	// String renders the value for result output: NULL, decimal integers,
	// shortest-form floats, debug byte lists for blobs, raw text.
	String() string
}

type NullValue struct{}

func (NullValue) DataType() ValueType { return ValueTypeNull }
func (NullValue) String() string      { return "NULL" }

type IntegerValue struct {
	Int int64
}

func (v IntegerValue) DataType() ValueType { return ValueTypeInteger }
func (v IntegerValue) String() string      { return strconv.FormatInt(v.Int, 10) }

type FloatValue struct {
	Float float64
}

func (v FloatValue) DataType() ValueType { return ValueTypeFloat }
func (v FloatValue) String() string      { return strconv.FormatFloat(v.Float, 'g', -1, 64) }

type BlobValue struct {
	Bytes []byte
}

func (v BlobValue) DataType() ValueType { return ValueTypeBlob }
func (v BlobValue) String() string      { return fmt.Sprintf("%v", v.Bytes) }

type TextValue struct {
	Text string
}

func (v TextValue) DataType() ValueType { return ValueTypeText }
func (v TextValue) String() string      { return v.Text }

// Record is the ordered sequence of column values stored in one row
// payload. Values are addressed by position; names live in the schema.
type Record struct {
	Values []Value
}

// ParseRecord decodes a row payload: a varint header length (including the
// varint itself), one serial-type varint per column, then the value bodies
// in the same order.
func ParseRecord(data []byte) (*Record, error) {
	headerLen64, n, err := DecodeVarint(data)
	if err != nil {
		return nil, errors.Annotate(err, "record header length")
	}
	headerLen := int(headerLen64)
	if headerLen < n || headerLen > len(data) {
		return nil, errors.Annotatef(ErrRecordTruncated, "header length %d of %d payload bytes", headerLen, len(data))
	}

	var serialTypes []uint64
	offset := n
	for offset < headerLen {
		serialType, m, err := DecodeVarint(data[offset:headerLen])
		if err != nil {
			return nil, errors.Annotatef(err, "serial type at offset %d", offset)
		}
		serialTypes = append(serialTypes, serialType)
		offset += m
	}

	values := make([]Value, 0, len(serialTypes))
	offset = headerLen
	for i, serialType := range serialTypes {
		value, size, err := decodeSerialValue(serialType, data[offset:])
		if err != nil {
			return nil, errors.Annotatef(err, "column %d", i)
		}
		values = append(values, value)
		offset += size
	}
	return &Record{Values: values}, nil
}

// serialTypeSize gives the body length in bytes for a serial type. The
// result stays uint64: a hostile 9-byte serial type can declare a size
// that would wrap a signed int.
func serialTypeSize(serialType uint64) (uint64, error) {
	switch serialType {
	case 0, 8, 9:
		return 0, nil
	case 1:
		return 1, nil
	case 2:
		return 2, nil
	case 3:
		return 3, nil
	case 4:
		return 4, nil
	case 5:
		return 6, nil
	case 6, 7:
		return 8, nil
	}
	if serialType >= 12 {
		if serialType%2 == 0 {
			return (serialType - 12) / 2, nil
		}
		return (serialType - 13) / 2, nil
	}
	// 10 and 11 are reserved and never appear in well-formed files.
	return 0, errors.Annotatef(ErrBadSerialType, "serial type %d", serialType)
}

func decodeSerialValue(serialType uint64, body []byte) (Value, int, error) {
	declared, err := serialTypeSize(serialType)
	if err != nil {
		return nil, 0, err
	}
	if declared > uint64(len(body)) {
		return nil, 0, errors.Annotatef(ErrRecordTruncated, "serial type %d needs %d bytes, %d left", serialType, declared, len(body))
	}
	size := int(declared)

	switch serialType {
	case 0:
		return NullValue{}, 0, nil
	case 1:
		return IntegerValue{Int: int64(int8(body[0]))}, 1, nil
	case 2:
		_, u := util.ReadUB2(body, 0)
		return IntegerValue{Int: int64(int16(u))}, 2, nil
	case 3:
		_, u := util.ReadUB3(body, 0)
		return IntegerValue{Int: signExtend(uint64(u), 24)}, 3, nil
	case 4:
		_, u := util.ReadUB4(body, 0)
		return IntegerValue{Int: int64(int32(u))}, 4, nil
	case 5:
		_, u := util.ReadUB6(body, 0)
		return IntegerValue{Int: signExtend(u, 48)}, 6, nil
	case 6:
		_, u := util.ReadUB8(body, 0)
		return IntegerValue{Int: int64(u)}, 8, nil
	case 7:
		_, u := util.ReadUB8(body, 0)
		return FloatValue{Float: math.Float64frombits(u)}, 8, nil
	case 8:
		return IntegerValue{Int: 0}, 0, nil
	case 9:
		return IntegerValue{Int: 1}, 0, nil
	}

	if serialType%2 == 0 {
		_, raw := util.ReadBytes(body, 0, size)
		if raw == nil {
			raw = []byte{}
		}
		return BlobValue{Bytes: raw}, size, nil
	}

	text := string(body[:size])
	if !utf8.ValidString(text) {
		return nil, 0, errors.Annotatef(ErrInvalidText, "%d bytes", size)
	}
	return TextValue{Text: text}, size, nil
}

// signExtend widens the low `bits` bits of u to a signed 64-bit integer.
func signExtend(u uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(u<<shift) >> shift
}
