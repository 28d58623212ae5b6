package base

import (
	"context"
)

// BatchTransport delivers batches to upstream, e.g. an HTTP endpoint or a Fluentd server
//
// SendBatch is called by one goroutine at a time and never concurrently for the same transport.
// Implementations should return early with the context's error when ctx is cancelled.
type BatchTransport interface {
	SendBatch(ctx context.Context, batch Batch) error
	Close() error
}

// EntrySerializer converts an ExtendedEntry into the wire format expected by a transport, e.g. JSON or msgpack
type EntrySerializer interface {
	// SerializeEntry serializes the given entry. The returned slice is owned by the caller.
	SerializeEntry(entry ExtendedEntry) ([]byte, error)
}
