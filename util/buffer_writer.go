package util

// Append-style writers, the inverse of the readers in buffer_reader.go.
// Used by fixtures and anywhere raw big-endian fields are produced.

func AppendByte(buff []byte, b byte) []byte {
	return append(buff, b)
}

func AppendUB2(buff []byte, v uint16) []byte {
	return append(buff, byte(v>>8), byte(v))
}

func AppendUB4(buff []byte, v uint32) []byte {
	return append(buff, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func AppendUB8(buff []byte, v uint64) []byte {
	return append(buff,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func WriteUB2(buff []byte, cursor int, v uint16) int {
	buff[cursor] = byte(v >> 8)
	buff[cursor+1] = byte(v)
	return cursor + 2
}

func WriteUB4(buff []byte, cursor int, v uint32) int {
	buff[cursor] = byte(v >> 24)
	buff[cursor+1] = byte(v >> 16)
	buff[cursor+2] = byte(v >> 8)
	buff[cursor+3] = byte(v)
	return cursor + 4
}
