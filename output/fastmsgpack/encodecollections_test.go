package fastmsgpack

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/stretchr/testify/assert"
	"github.com/vmihailenco/msgpack/v4"
)

func TestEncodeCollectionLen(t *testing.T) {
	for _, n := range []int{0, 2, 15, 16, 32768, 65535, 65536, 16777216} {
		buf := make([]byte, 10)
		end := EncodeArrayLen(buf, 0, n)
		assert.Equal(t, SizeOfCollectionLen(n), end, "array len=%d", n)
		alen, err := msgpack.NewDecoder(bytes.NewBuffer(buf[:end])).DecodeArrayLen()
		assert.NoError(t, err, "array len=%d", n)
		assert.Equal(t, n, alen)

		end = EncodeMapLen(buf, 0, n)
		assert.Equal(t, SizeOfCollectionLen(n), end, "map len=%d", n)
		mlen, err := msgpack.NewDecoder(bytes.NewBuffer(buf[:end])).DecodeMapLen()
		assert.NoError(t, err, "map len=%d", n)
		assert.Equal(t, n, mlen)
	}
}

func TestEncodeString(t *testing.T) {
	for _, str := range []string{"", "helloWorld", strings.Repeat("x", 31), strings.Repeat("y", 32),
		strings.Repeat("z", 255), strings.Repeat("0123456789", 1000), strings.Repeat("0123456789", 10000)} {
		buf := make([]byte, SizeOfString(str))
		end := EncodeString(buf, 0, str)
		assert.Equal(t, len(buf), end, "str len=%d", len(str))
		decoded, err := msgpack.NewDecoder(bytes.NewBuffer(buf)).DecodeString()
		assert.NoError(t, err, "str len=%d", len(str))
		assert.Equal(t, str, decoded)
	}
}

func TestEncodeInt(t *testing.T) {
	for _, n := range []int64{0, 1, 127, 128, -1, -2147483648, 2147483647, 2147483648, -9223372036854775808} {
		buf := make([]byte, SizeOfInt(n))
		end := EncodeInt(buf, 0, n)
		assert.Equal(t, len(buf), end, "int %d", n)
		decoded, err := msgpack.NewDecoder(bytes.NewBuffer(buf)).DecodeInt64()
		assert.NoError(t, err, "int %d", n)
		assert.Equal(t, n, decoded)
	}
}

func TestEncodeEventTime(t *testing.T) {
	tm := time.Date(2022, 1, 17, 10, 30, 40, 123456789, time.UTC)
	buf := make([]byte, SizeOfEventTime)
	assert.Equal(t, SizeOfEventTime, EncodeEventTime(buf, 0, tm))

	decoded, err := msgpack.NewDecoder(bytes.NewBuffer(buf)).DecodeInterface()
	assert.NoError(t, err)
	if eventTime, ok := decoded.(*forwardprotocol.EventTime); assert.True(t, ok, "%T", decoded) {
		assert.Equal(t, tm.UnixNano(), eventTime.Time.UnixNano())
	}
}

func TestPutLength(t *testing.T) {
	buf := make([]byte, 5)
	assert.Equal(t, 3, putLength(buf, 0, 0xA, 0xB, 0x1234))
	assert.Equal(t, []byte{0xA, 0x12, 0x34}, buf[:3])

	assert.Equal(t, 5, putLength(buf, 0, 0xA, 0xB, 0x10000))
	assert.Equal(t, []byte{0xB, 0x00, 0x01, 0x00, 0x00}, buf)
}
