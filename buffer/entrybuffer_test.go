package buffer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/relex/eventsink/base"
	"github.com/stretchr/testify/assert"
)

func entry(msg string) base.LogEntry {
	return base.LogEntry{Message: msg}
}

func messages(entries []base.LogEntry) []string {
	result := make([]string, len(entries))
	for i, e := range entries {
		result[i] = e.Message
	}
	return result
}

func TestEntryBufferOverflow(t *testing.T) {
	buf := NewEntryBuffer(3, 0, nil)
	assert.True(t, buf.Post(entry("a")))
	assert.True(t, buf.Post(entry("b")))
	assert.True(t, buf.Post(entry("c")))
	assert.False(t, buf.Post(entry("d")))
	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, int64(1), buf.Dropped())

	assert.Equal(t, []string{"a", "b", "c"}, messages(buf.DrainAll()))
	assert.Equal(t, 0, buf.Len())

	assert.True(t, buf.Post(entry("e")))
	assert.Equal(t, []string{"e"}, messages(buf.DrainAll()))
	assert.Empty(t, buf.DrainAll())
}

func TestEntryBufferThreshold(t *testing.T) {
	triggered := 0
	buf := NewEntryBuffer(10, 2, func() { triggered++ })
	buf.Post(entry("a"))
	assert.Equal(t, 0, triggered)
	buf.Post(entry("b"))
	assert.Equal(t, 1, triggered)
	buf.Post(entry("c"))
	assert.Equal(t, 1, triggered, "no repeated trigger above threshold")
	buf.DrainAll()
	buf.Post(entry("d"))
	buf.Post(entry("e"))
	assert.Equal(t, 2, triggered)
}

func TestEntryBufferThresholdDisabled(t *testing.T) {
	triggered := 0
	buf := NewEntryBuffer(10, 0, func() { triggered++ })
	for i := 0; i < 10; i++ {
		buf.Post(entry(fmt.Sprint(i)))
	}
	assert.Equal(t, 0, triggered)
}

func TestEntryBufferClose(t *testing.T) {
	buf := NewEntryBuffer(10, 0, nil)
	assert.True(t, buf.Post(entry("a")))
	buf.Close()
	assert.True(t, buf.Closed())
	assert.False(t, buf.Post(entry("b")))
	assert.Equal(t, int64(0), buf.Dropped(), "rejection after close is not overflow")
	assert.Equal(t, []string{"a"}, messages(buf.DrainAll()))
}

func TestEntryBufferConcurrentDrain(t *testing.T) {
	const numProducers = 8
	const numPerProducer = 5000
	buf := NewEntryBuffer(1000, 0, nil)

	accepted := int64(0)
	wg := &sync.WaitGroup{}
	for p := 0; p < numProducers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < numPerProducer; i++ {
				if buf.Post(entry(fmt.Sprintf("%d-%d", p, i))) {
					atomic.AddInt64(&accepted, 1)
				}
			}
		}(p)
	}

	seen := make(map[string]bool, numProducers*numPerProducer)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	drain := func() {
		for _, e := range buf.DrainAll() {
			assert.False(t, seen[e.Message], "delivered twice: %s", e.Message)
			seen[e.Message] = true
		}
	}
LOOP:
	for {
		select {
		case <-done:
			break LOOP
		default:
			drain()
		}
	}
	drain()

	assert.Equal(t, int(accepted), len(seen))
	assert.Equal(t, int64(numProducers*numPerProducer), accepted+buf.Dropped())
}
