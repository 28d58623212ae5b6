package base

import (
	"fmt"
)

// SerializedEntry is the transport-ready form of one ExtendedEntry
type SerializedEntry struct {
	Data         []byte
	PartitionKey string // empty for endpoint-assigned distribution
}

// Batch is an ordered group of serialized entries to be sent together
//
// All entries in a Batch share the same PartitionKey
type Batch struct {
	ID           string // Unique ID of this batch, may be used as filename or chunk ID
	Entries      []SerializedEntry
	PartitionKey string
	NumBytes     int // Sum of serialized lengths, not including any framing added by transports
}

// Append adds an entry to the batch
func (batch *Batch) Append(entry SerializedEntry) {
	batch.Entries = append(batch.Entries, entry)
	batch.NumBytes += len(entry.Data)
}

// Len returns the numbers of entries
func (batch Batch) Len() int {
	return len(batch.Entries)
}

func (batch Batch) String() string {
	if batch.PartitionKey == "" {
		return fmt.Sprintf("id=%s entries=%d len=%d", batch.ID, len(batch.Entries), batch.NumBytes)
	}
	return fmt.Sprintf("id=%s entries=%d len=%d key=%s", batch.ID, len(batch.Entries), batch.NumBytes, batch.PartitionKey)
}
