package util

// Cursor-style readers for the big-endian integers used throughout the
// database file format. Every function takes the buffer and the current
// cursor and returns the advanced cursor alongside the value; callers are
// responsible for bounds checks.

func ReadBytes(buff []byte, cursor int, length int) (int, []byte) {
	if length <= 0 {
		return cursor, nil
	}
	out := make([]byte, length)
	copy(out, buff[cursor:cursor+length])
	return cursor + length, out
}

func ReadByte(buff []byte, cursor int) (int, byte) {
	return cursor + 1, buff[cursor]
}

func ReadUB2(buff []byte, cursor int) (int, uint16) {
	i := uint16(buff[cursor]) << 8
	i |= uint16(buff[cursor+1])
	return cursor + 2, i
}

func ReadUB3(buff []byte, cursor int) (int, uint32) {
	i := uint32(buff[cursor]) << 16
	i |= uint32(buff[cursor+1]) << 8
	i |= uint32(buff[cursor+2])
	return cursor + 3, i
}

func ReadUB4(buff []byte, cursor int) (int, uint32) {
	i := uint32(buff[cursor]) << 24
	i |= uint32(buff[cursor+1]) << 16
	i |= uint32(buff[cursor+2]) << 8
	i |= uint32(buff[cursor+3])
	return cursor + 4, i
}

func ReadUB6(buff []byte, cursor int) (int, uint64) {
	i := uint64(buff[cursor]) << 40
	i |= uint64(buff[cursor+1]) << 32
	i |= uint64(buff[cursor+2]) << 24
	i |= uint64(buff[cursor+3]) << 16
	i |= uint64(buff[cursor+4]) << 8
	i |= uint64(buff[cursor+5])
	return cursor + 6, i
}

func ReadUB8(buff []byte, cursor int) (int, uint64) {
	i := uint64(buff[cursor]) << 56
	i |= uint64(buff[cursor+1]) << 48
	i |= uint64(buff[cursor+2]) << 40
	i |= uint64(buff[cursor+3]) << 32
	i |= uint64(buff[cursor+4]) << 24
	i |= uint64(buff[cursor+5]) << 16
	i |= uint64(buff[cursor+6]) << 8
	i |= uint64(buff[cursor+7])
	return cursor + 8, i
}
