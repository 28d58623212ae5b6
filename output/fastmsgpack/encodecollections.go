package fastmsgpack

import (
	"math"

	"github.com/vmihailenco/msgpack/v4/codes"
)

// SizeOfCollectionLen returns the length of array or map header
func SizeOfCollectionLen(numItems int) int {
	switch {
	case numItems <= 15:
		return 1
	case numItems <= math.MaxUint16:
		return 3
	default:
		return 5
	}
}

// EncodeArrayLen encodes the header of array in the shortest form
func EncodeArrayLen(buffer []byte, start int, arrayLen int) int {
	switch {
	case arrayLen <= 15:
		buffer[start] = byte(codes.FixedArrayLow) | byte(arrayLen)
		return start + 1
	default:
		return putLength(buffer, start, byte(codes.Array16), byte(codes.Array32), arrayLen)
	}
}

// EncodeMapLen encodes the header of map in the shortest form
func EncodeMapLen(buffer []byte, start int, mapLen int) int {
	switch {
	case mapLen <= 15:
		buffer[start] = byte(codes.FixedMapLow) | byte(mapLen)
		return start + 1
	default:
		return putLength(buffer, start, byte(codes.Map16), byte(codes.Map32), mapLen)
	}
}
