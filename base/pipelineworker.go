package base

import (
	"github.com/relex/gotils/channels"
)

// PipelineWorker represents a background worker, e.g. an input listener or a sink's publisher loop
type PipelineWorker interface {
	Start()
	Stopped() channels.Awaitable
}

// EntryInput represents an input source posting entries to a sink, e.g. a TCP listener
type EntryInput interface {
	PipelineWorker
	Address() string
}

// EntryReceiver accepts entries from inputs
//
// Post never blocks and returns false if the entry is dropped
type EntryReceiver interface {
	Post(entry LogEntry) bool
}
