package batch

import (
	"fmt"
	"sync"
	"time"
)

// batchIDGenerator generates unique and ordered batch IDs, usable as filenames or Forward protocol chunk IDs
type batchIDGenerator struct {
	sync.Mutex
	epochNano int64
	sequence  int32
	suffix    string
}

func newBatchIDGenerator(suffix string) *batchIDGenerator {
	return &batchIDGenerator{
		Mutex:     sync.Mutex{},
		epochNano: 0,
		sequence:  0,
		suffix:    suffix,
	}
}

// Generate returns the next batch ID, which consists of a nanosecond timestamp and a sequence number
//
// The sequence number is incremented by one every time until the time is changed
func (generator *batchIDGenerator) Generate() string {
	generator.Lock()
	nextTimestamp := time.Now().UnixNano()
	if nextTimestamp > generator.epochNano {
		generator.epochNano = nextTimestamp
		generator.sequence = 0
	} else {
		generator.sequence++
	}
	timestamp := generator.epochNano
	nextSequence := generator.sequence
	generator.Unlock()
	return fmt.Sprintf("%019d-%04d%s", timestamp, nextSequence, generator.suffix)
}
