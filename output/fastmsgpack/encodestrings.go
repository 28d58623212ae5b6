package fastmsgpack

import (
	"math"

	"github.com/vmihailenco/msgpack/v4/codes"
)

// SizeOfString returns the encoded length of string including header
func SizeOfString(str string) int {
	return SizeOfStringLen(len(str)) + len(str)
}

// SizeOfStringLen returns the length of string header
func SizeOfStringLen(strLen int) int {
	switch {
	case strLen <= 31:
		return 1
	case strLen <= math.MaxUint8:
		return 2
	case strLen <= math.MaxUint16:
		return 3
	default:
		return 5
	}
}

// EncodeString encodes string in the shortest form
func EncodeString(buffer []byte, start int, str string) int { // xx:inline
	pos := EncodeStringLen(buffer, start, len(str))
	pos += copy(buffer[pos:], str)
	return pos
}

// EncodeStringLen encodes the header of string in the shortest form
func EncodeStringLen(buffer []byte, start int, strLen int) int {
	switch {
	case strLen <= 31:
		buffer[start] = byte(codes.FixedStrLow) | byte(strLen)
		return start + 1
	case strLen <= math.MaxUint8:
		buffer[start] = byte(codes.Str8)
		buffer[start+1] = byte(strLen)
		return start + 2
	default:
		return putLength(buffer, start, byte(codes.Str16), byte(codes.Str32), strLen)
	}
}
