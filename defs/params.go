package defs

import (
	"time"
)

var (
	// DefaultMaxMessageBytes is the maximum serialized size of one batch in automatic sizing mode
	//
	// The value must stay below the message size limit of upstream endpoints, e.g. 256KB for Event Hubs standard tier
	DefaultMaxMessageBytes = 250000

	// DefaultBufferingCount is the number of pending entries to trigger flushing when bufferingCount is not configured
	DefaultBufferingCount = 1000

	// DefaultMaxBufferSize is the maximum number of pending entries when maxBufferSize is not configured
	//
	// New entries are dropped when the limit is reached
	DefaultMaxBufferSize = 30000

	// DefaultFlushAllTimeout is how long shutdown waits for the final flush when bufferingFlushAllTimeout is not configured
	DefaultFlushAllTimeout = 5 * time.Second

	// SinkLoopStopTimeout is how long to wait for the publisher loop to exit after the final flush has been abandoned
	//
	// The timeout isn't supposed to be reached unless a transport ignores context cancellation
	SinkLoopStopTimeout = 30 * time.Second
)

var (
	// InputLogMaxMessageBytes defines the maximum length of an incoming line before it's cut into multiple entries
	InputLogMaxMessageBytes = 1 * 1024 * 1024

	// InputFlushInterval defines how long to wait for continuation lines before an incomplete multi-line entry is posted
	InputFlushInterval = 500 * time.Millisecond

	// ListenerLineBufferSize defines the initial buffer size in bytes to read incoming lines
	ListenerLineBufferSize = InputLogMaxMessageBytes * 4

	// InputStopTimeout defines how long to wait for open connections after inputs are requested to stop
	InputStopTimeout = 10 * time.Second
)

var (
	// ForwarderConnectionTimeout is for establishing a TCP connection to upstream
	ForwarderConnectionTimeout = 60 * time.Second

	// ForwarderHandshakeTimeout is for TLS and shared-key handshake with upstream
	ForwarderHandshakeTimeout = ForwarderConnectionTimeout + ForwarderConnectionTimeout/2

	// ForwarderBatchSendMinimumSpeed is the minimum speed in bytes/sec to calculate timeout
	//
	// Actual timeout for sending is [base] + [packet length] / [minimal speed]
	ForwarderBatchSendMinimumSpeed = 10 * 1024

	// ForwarderBatchSendTimeoutBase is how long to wait at least for sending one batch
	ForwarderBatchSendTimeoutBase = ForwarderConnectionTimeout + ForwarderConnectionTimeout/2

	// ForwarderBatchAckTimeout is how long to wait for receiving one batch ACK
	ForwarderBatchAckTimeout = ForwarderConnectionTimeout + 60*time.Second

	// HTTPRequestTimeout is the default timeout of one HTTP request to upstream if not configured
	HTTPRequestTimeout = 60 * time.Second
)

// For testing and experiments
const (
	TestReadTimeout = 5 * time.Second
)

// EnableTestMode turns on test mode with very short timeouts
func EnableTestMode() {
	DefaultFlushAllTimeout = 1 * time.Second
	SinkLoopStopTimeout = 2 * time.Second
	InputStopTimeout = 1 * time.Second
	ForwarderConnectionTimeout = 1 * time.Second
	ForwarderHandshakeTimeout = 2 * time.Second
	ForwarderBatchSendTimeoutBase = 3 * time.Second
	ForwarderBatchAckTimeout = 3 * time.Second
	HTTPRequestTimeout = 3 * time.Second
}
