package tcplistener

import (
	"bytes"

	"github.com/relex/eventsink/util"
)

type ioReader func(p []byte) (n int, err error)
type recordConsumer func(s []byte)
type headTester func(s []byte) bool

// multiLineReader keeps entire multi-line records on buffer for zero heap alloc and minimal moving
//
// Only the first line of a record can be recognized, for example a stack trace in text format:
//
//	Unhandled exception in OrderService
//	   at Orders.Submit()
//	   at Orders.Handle()
//	Next entry
//
// The end of a record is decided by the start of the next one, or by periodic flush on read timeout,
// assuming all lines of a record arrive within a short time.
type multiLineReader struct {
	readInput       ioReader       // io.Reader.Read
	testRecordStart headTester     // test whether a line is the start of a valid record, not including newline
	consumeRecord   recordConsumer // callback to consume a record, not including last newline and may be oversized
	softRecordLimit int            // soft limit of record length, may not be applied to every consumeRecord calls
	buffer          []byte         // preallocated buffer
	offsetSearch    int            // point to start of the last line, could be end of buffer
	offsetAppend    int            // point to end of buffer
}

func newMultiLineReader(read ioReader, test headTester, minBufferSize, softRecordLimit int, consume recordConsumer) *multiLineReader {
	return &multiLineReader{
		readInput:       read,
		testRecordStart: test,
		consumeRecord:   consume,
		softRecordLimit: softRecordLimit,
		buffer:          make([]byte, util.MaxInt(minBufferSize, softRecordLimit*3)),
		offsetSearch:    0,
		offsetAppend:    0,
	}
}

// Read reads next block to buffer and consumes any valid records in buffer
// It always reads as much as the buffer allows
func (mlr *multiLineReader) Read() error {
	n, err := mlr.readInput(mlr.buffer[mlr.offsetAppend:])
	if n > 0 {
		bufferedLength := n + mlr.offsetAppend
		mlr.processBuffer(bufferedLength)
	}
	return err
}

// Flush considers buffered multi-line record completed and consumes it if valid
func (mlr *multiLineReader) Flush() {
	buffer := mlr.buffer[:mlr.offsetAppend]
	n := bytes.LastIndexByte(buffer, '\n')
	if n == -1 {
		return
	}
	record := buffer[:n]
	if len(record) > 0 && mlr.testRecordStart(record) {
		mlr.consumeRecord(record)
	}
	// relocate unfinished record to the beginning
	mlr.offsetAppend = copy(mlr.buffer, buffer[n+1:])
	mlr.offsetSearch = 0
}

// FlushAll is like Flush but including the last unfinished line, to be done before shutdown
func (mlr *multiLineReader) FlushAll() {
	record := mlr.buffer[:mlr.offsetAppend]
	if len(record) > 0 {
		// cut trailing newline
		if record[len(record)-1] == '\n' {
			record = record[:len(record)-1]
		}
		if mlr.testRecordStart(record) {
			mlr.consumeRecord(record)
		}
	}
	mlr.offsetAppend = 0
	mlr.offsetSearch = 0
}

func (mlr *multiLineReader) processBuffer(bufferEnd int) {
	recordStart := 0
	searchStart := mlr.offsetSearch
	buffer := mlr.buffer[:bufferEnd]
	test := mlr.testRecordStart
	for {
		nextEndRel := bytes.IndexByte(buffer[searchStart:], '\n')
		if nextEndRel == -1 {
			break
		}
		nextEnd := nextEndRel + searchStart
		// only test if there are previous lines, laid out as: [prev record L1, '\n', prev record L2, '\n', next record L1, '\n']
		if searchStart > 0 && searchStart < nextEnd {
			nextLine := buffer[searchStart:nextEnd]
			if test(nextLine) {
				prevRecord := buffer[recordStart : searchStart-1]
				mlr.consumeRecord(prevRecord)
				recordStart = searchStart
			}
		}
		searchStart = nextEnd + 1
	}
	if recordStart > 0 {
		// relocate unfinished record to the beginning
		mlr.offsetAppend = copy(mlr.buffer, buffer[recordStart:])
		mlr.offsetSearch = searchStart - recordStart
	} else {
		mlr.offsetAppend = bufferEnd
		mlr.offsetSearch = searchStart
	}
	mlr.checkOverflow()
}

// checkOverflow consumes everything buffered when there is no room left for another record of max length
func (mlr *multiLineReader) checkOverflow() {
	if len(mlr.buffer)-mlr.offsetAppend >= mlr.softRecordLimit {
		return
	}
	mlr.consumeOversized(mlr.buffer[:mlr.offsetAppend], mlr.offsetSearch)
	mlr.offsetAppend = 0
	mlr.offsetSearch = 0
}

// consumeOversized consumes the buffered records as they are, cut at the last line start if it begins a new record
func (mlr *multiLineReader) consumeOversized(buffer []byte, lastLineStart int) {
	if lastLineStart > 0 {
		lastLine := buffer[lastLineStart:]
		if mlr.testRecordStart(lastLine) {
			if prevRecord := buffer[:lastLineStart-1]; mlr.testRecordStart(prevRecord) {
				mlr.consumeRecord(prevRecord)
			}
			mlr.consumeRecord(lastLine)
			return
		}
	}
	if mlr.testRecordStart(buffer) {
		mlr.consumeRecord(buffer)
	}
}
