package fastmsgpack

import (
	"math"
	"time"

	"github.com/vmihailenco/msgpack/v4/codes"
)

// SizeOfEventTime is the encoded length of EventTime
const SizeOfEventTime = 10

// SizeOfInt returns the encoded length of integer
func SizeOfInt(value int64) int {
	switch {
	case value >= 0 && value <= 127:
		return 1
	case value >= math.MinInt32 && value <= math.MaxInt32:
		return 5
	default:
		return 9
	}
}

// EncodeInt encodes integer as positive fixint, int32 or int64
func EncodeInt(buffer []byte, start int, value int64) int {
	switch {
	case value >= 0 && value <= 127:
		buffer[start] = byte(value)
		return start + 1
	case value >= math.MinInt32 && value <= math.MaxInt32:
		buffer[start] = byte(codes.Int32)
		return putUint32(buffer, start+1, uint32(int32(value)))
	default:
		buffer[start] = byte(codes.Int64)
		return putUint64(buffer, start+1, uint64(value))
	}
}

// EncodeEventTime encodes fluentd EventTime: ext type 0 of seconds and nanoseconds as two big-endian uint32
func EncodeEventTime(buffer []byte, start int, value time.Time) int { // xx:inline
	buffer[start] = byte(codes.FixExt8)
	buffer[start+1] = 0
	pos := putUint32(buffer, start+2, uint32(value.Unix()))
	return putUint32(buffer, pos, uint32(value.Nanosecond()))
}
