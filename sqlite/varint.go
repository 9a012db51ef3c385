package sqlite

import "github.com/juju/errors"

// MaxVarintLen is the longest possible varint encoding.
const MaxVarintLen = 9

// DecodeVarint reads one variable-length integer from the start of data.
// The first eight bytes each contribute their low seven bits, most
// significant group first, with the high bit signalling continuation. A
// ninth byte, if reached, contributes all eight bits unconditionally, so an
// encoding never exceeds nine bytes. Returns the value and the number of
// bytes consumed.
func DecodeVarint(data []byte) (uint64, int, error) {
	var value uint64
	for i := 0; i < MaxVarintLen; i++ {
		if i >= len(data) {
			return 0, 0, errors.Annotatef(ErrBadVarint, "after %d bytes", i)
		}
		b := data[i]
		if i == MaxVarintLen-1 {
			return value<<8 | uint64(b), MaxVarintLen, nil
		}
		value = value<<7 | uint64(b&0x7f)
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	// Unreachable: the ninth byte always terminates.
	return 0, 0, errors.Trace(ErrBadVarint)
}

// EncodeVarint is the inverse of DecodeVarint and always emits the minimal
// number of bytes.
func EncodeVarint(value uint64) []byte {
	if value>>56 != 0 {
		// Values with more than 56 significant bits need the nine-byte
		// form: eight 7-bit groups plus a full trailing byte.
		buf := make([]byte, MaxVarintLen)
		buf[8] = byte(value)
		value >>= 8
		for i := 7; i >= 0; i-- {
			buf[i] = byte(value&0x7f) | 0x80
			value >>= 7
		}
		return buf
	}

	n := 1
	for v := value >> 7; v != 0; v >>= 7 {
		n++
	}
	buf := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		buf[i] = byte(value&0x7f) | 0x80
		value >>= 7
	}
	buf[n-1] &^= 0x80
	return buf
}
