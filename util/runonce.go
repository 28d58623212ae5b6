package util

import (
	"sync/atomic"

	"github.com/relex/gotils/channels"
)

// RunOnce calls a function at most once, like sync.Once
//
// Unlike sync.Once, the caller of Do knows whether its own function has been called, and callers losing the race can
// observe the completion through Done(). This can be used to protect e.g. shutdown, which should be performed exactly
// once while every caller returns after its completion.
type RunOnce struct {
	invoked int32
	done    *channels.SignalAwaitable
}

// NewRunOnce creates a RunOnce
func NewRunOnce() *RunOnce {
	return &RunOnce{
		invoked: 0,
		done:    channels.NewSignalAwaitable(),
	}
}

// Do calls f if no function has been called by this RunOnce, or waits for the first call to return
//
// Returns true when f is actually called
func (once *RunOnce) Do(f func()) bool {
	if atomic.CompareAndSwapInt32(&once.invoked, 0, 1) {
		defer once.done.Signal()
		f()
		return true
	}
	once.done.WaitForever()
	return false
}

// Invoked tells whether Do has been called
func (once *RunOnce) Invoked() bool {
	return atomic.LoadInt32(&once.invoked) == 1
}

// Done returns an Awaitable which is signaled when the first function has returned
func (once *RunOnce) Done() channels.Awaitable {
	return once.done
}
