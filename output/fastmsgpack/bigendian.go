package fastmsgpack

import (
	"encoding/binary"
)

// putUint16 writes n at buffer[start:] and returns the position after it
func putUint16(buffer []byte, start int, n uint16) int {
	binary.BigEndian.PutUint16(buffer[start:], n)
	return start + 2
}

func putUint32(buffer []byte, start int, n uint32) int {
	binary.BigEndian.PutUint32(buffer[start:], n)
	return start + 4
}

func putUint64(buffer []byte, start int, n uint64) int {
	binary.BigEndian.PutUint64(buffer[start:], n)
	return start + 8
}

// putLength writes a collection or string length after its format byte, picking the 16-bit or 32-bit format
//
// Lengths small enough for the fix formats are not handled here.
func putLength(buffer []byte, start int, format16 byte, format32 byte, length int) int {
	if length <= 0xFFFF {
		buffer[start] = format16
		return putUint16(buffer, start+1, uint16(length))
	}
	buffer[start] = format32
	return putUint32(buffer, start+1, uint32(length))
}
