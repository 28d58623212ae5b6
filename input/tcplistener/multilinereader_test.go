package tcplistener

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedConn replays chunks as separate reads, like small TCP segments
type chunkedConn struct {
	chunks []string
}

func (c *chunkedConn) push(chunks ...string) {
	c.chunks = append(c.chunks, chunks...)
}

func (c *chunkedConn) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	next := c.chunks[0]
	if len(next) > len(p) {
		return 0, fmt.Errorf("chunk of %d bytes exceeds free buffer of %d", len(next), len(p))
	}
	c.chunks = c.chunks[1:]
	return copy(p, next), nil
}

type recordCollector struct {
	records []string
}

func (c *recordCollector) consume(record []byte) {
	c.records = append(c.records, string(record))
}

func newTestMultiLineReader(parser entryParser, softRecordLimit int) (*multiLineReader, *chunkedConn, *recordCollector) {
	conn := &chunkedConn{}
	collector := &recordCollector{}
	return newMultiLineReader(conn.Read, parser.testRecordStart, 0, softRecordLimit, collector.consume), conn, collector
}

// readAll reads until all pushed chunks are consumed
func readAll(t *testing.T, mlr *multiLineReader, conn *chunkedConn) {
	for len(conn.chunks) > 0 {
		require.NoError(t, mlr.Read())
	}
}

func TestMultiLineReaderStackTrace(t *testing.T) {
	mlr, conn, out := newTestMultiLineReader(&textEntryParser{}, 64)

	conn.push("Unhandled exception in OrderService\n   at Orders.Submit()\n")
	readAll(t, mlr, conn)
	assert.Empty(t, out.records)

	conn.push("\tat Orders.Handle()\nOrder O-2 accepted\n")
	readAll(t, mlr, conn)
	assert.Equal(t, []string{
		"Unhandled exception in OrderService\n   at Orders.Submit()\n\tat Orders.Handle()",
	}, out.records)

	// a record split across reads
	conn.push("Order O-3 acc", "epted\n")
	readAll(t, mlr, conn)
	assert.Equal(t, "Order O-2 accepted", out.records[len(out.records)-1])
	assert.Len(t, out.records, 2)

	mlr.Flush()
	assert.Equal(t, "Order O-3 accepted", out.records[len(out.records)-1])
	assert.Zero(t, mlr.offsetAppend)
	assert.Zero(t, mlr.offsetSearch)
}

func TestMultiLineReaderPrettyJSON(t *testing.T) {
	parser := &jsonEntryParser{now: func() time.Time { return time.Time{} }}
	mlr, conn, out := newTestMultiLineReader(parser, 64)

	conn.push("{\n  \"message\": \"order accepted\",\n", "  \"level\": \"Information\"\n}\n{\"message\":\"single line\"}\n")
	readAll(t, mlr, conn)
	require.Len(t, out.records, 1)
	assert.Equal(t, "{\n  \"message\": \"order accepted\",\n  \"level\": \"Information\"\n}", out.records[0])

	entry, err := parser.parse([]byte(out.records[0]))
	if assert.NoError(t, err) {
		assert.Equal(t, "order accepted", entry.Message)
		assert.Equal(t, "Information", entry.Level)
	}

	mlr.Flush()
	assert.Equal(t, []string{out.records[0], `{"message":"single line"}`}, out.records)
}

func TestMultiLineReaderFlush(t *testing.T) {
	mlr, conn, out := newTestMultiLineReader(&textEntryParser{}, 64)

	// continuation lines without a starting line are dropped
	conn.push("  orphan continuation\nOrder O-4")
	readAll(t, mlr, conn)
	mlr.Flush()
	assert.Empty(t, out.records)
	assert.Equal(t, "Order O-4", string(mlr.buffer[:mlr.offsetAppend]))

	// the unfinished last line is only taken on FlushAll
	mlr.FlushAll()
	assert.Equal(t, []string{"Order O-4"}, out.records)
	assert.Zero(t, mlr.offsetAppend)

	conn.push("Order O-5\n   at Retry()\n")
	readAll(t, mlr, conn)
	mlr.FlushAll()
	assert.Equal(t, []string{"Order O-4", "Order O-5\n   at Retry()"}, out.records)
	assert.Zero(t, mlr.offsetAppend)
	assert.Zero(t, mlr.offsetSearch)
}

func TestMultiLineReaderMaxLength(t *testing.T) {
	t.Run("single oversized record", func(t *testing.T) {
		mlr, conn, out := newTestMultiLineReader(&textEntryParser{}, 16)
		require.Len(t, mlr.buffer, 48)

		conn.push("Order O-1 failed with a long reason ....") // 40 bytes leave less than a record of room
		readAll(t, mlr, conn)
		assert.Equal(t, []string{"Order O-1 failed with a long reason ...."}, out.records)
		assert.Zero(t, mlr.offsetAppend)
		assert.Zero(t, mlr.offsetSearch)

		conn.push("Order O-2\n")
		readAll(t, mlr, conn)
		mlr.Flush()
		assert.Equal(t, "Order O-2", out.records[len(out.records)-1])
	})
	t.Run("oversized after complete record", func(t *testing.T) {
		mlr, conn, out := newTestMultiLineReader(&textEntryParser{}, 16)

		conn.push("Order O-1\nOrder O-2 has a very long tail")
		readAll(t, mlr, conn)
		assert.Equal(t, []string{"Order O-1", "Order O-2 has a very long tail"}, out.records)
		assert.Zero(t, mlr.offsetAppend)
		assert.Zero(t, mlr.offsetSearch)
	})
	t.Run("oversized garbage", func(t *testing.T) {
		mlr, conn, out := newTestMultiLineReader(&jsonEntryParser{}, 16)

		conn.push("not json at all, not json at all, not json") // no '{' at start
		readAll(t, mlr, conn)
		assert.Empty(t, out.records)
		assert.Zero(t, mlr.offsetAppend)
	})
	t.Run("oversized blank lines", func(t *testing.T) {
		mlr, conn, out := newTestMultiLineReader(&textEntryParser{}, 16)

		conn.push("\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n", "\n\n\n\n\n\n\n\n\n\n")
		readAll(t, mlr, conn)
		assert.Equal(t, 30, mlr.offsetAppend)
		assert.Equal(t, 30, mlr.offsetSearch)

		conn.push("\n\n\nOrder O-9")
		readAll(t, mlr, conn)
		assert.Equal(t, []string{"Order O-9"}, out.records)
		assert.Zero(t, mlr.offsetAppend)
	})
}
