// Package buffer provides the bounded in-memory queue of pending entries for sinks
package buffer

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v2"
	"github.com/relex/eventsink/base"
)

// EntryBuffer is a thread-safe bounded queue of entries waiting to be flushed
//
// Post never blocks: entries beyond maxBufferSize are dropped and counted. DrainAll takes all pending entries at once,
// so that entries posted during a flush belong to the next one.
type EntryBuffer struct {
	mutex          sync.Mutex
	pending        []base.LogEntry
	maxBufferSize  int
	countThreshold int    // 0 to disable count trigger
	onThreshold    func() // called outside of lock when pending count reaches countThreshold
	closed         bool
	lastFlushTime  time.Time
	dropped        *xsync.Counter
}

// NewEntryBuffer creates an EntryBuffer
//
// onThreshold is invoked by the posting goroutine when the number of pending entries reaches countThreshold, unless
// countThreshold is zero
func NewEntryBuffer(maxBufferSize int, countThreshold int, onThreshold func()) *EntryBuffer {
	initialCap := maxBufferSize
	if countThreshold > 0 && countThreshold < initialCap {
		initialCap = countThreshold
	}
	return &EntryBuffer{
		mutex:          sync.Mutex{},
		pending:        make([]base.LogEntry, 0, initialCap),
		maxBufferSize:  maxBufferSize,
		countThreshold: countThreshold,
		onThreshold:    onThreshold,
		closed:         false,
		lastFlushTime:  time.Now(),
		dropped:        xsync.NewCounter(),
	}
}

// Post appends the entry, or drops it if the buffer is full or closed
//
// Returns true if the entry is accepted
func (buf *EntryBuffer) Post(entry base.LogEntry) bool {
	buf.mutex.Lock()
	if buf.closed {
		buf.mutex.Unlock()
		return false
	}
	if len(buf.pending) >= buf.maxBufferSize {
		buf.mutex.Unlock()
		buf.dropped.Inc()
		return false
	}
	buf.pending = append(buf.pending, entry)
	reached := buf.countThreshold > 0 && len(buf.pending) == buf.countThreshold
	buf.mutex.Unlock()

	if reached && buf.onThreshold != nil {
		buf.onThreshold()
	}
	return true
}

// DrainAll removes and returns all pending entries in posting order
func (buf *EntryBuffer) DrainAll() []base.LogEntry {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()

	drained := buf.pending
	buf.pending = make([]base.LogEntry, 0, cap(drained))
	buf.lastFlushTime = time.Now()
	return drained
}

// Len returns the current number of pending entries
func (buf *EntryBuffer) Len() int {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()
	return len(buf.pending)
}

// Dropped returns the total number of entries dropped due to overflow
func (buf *EntryBuffer) Dropped() int64 {
	return buf.dropped.Value()
}

// LastFlushTime returns the time of last DrainAll, or creation time
func (buf *EntryBuffer) LastFlushTime() time.Time {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()
	return buf.lastFlushTime
}

// Close rejects all further posts. Pending entries are kept for the final DrainAll.
func (buf *EntryBuffer) Close() {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()
	buf.closed = true
}

// Closed tells whether Close has been called
func (buf *EntryBuffer) Closed() bool {
	buf.mutex.Lock()
	defer buf.mutex.Unlock()
	return buf.closed
}
