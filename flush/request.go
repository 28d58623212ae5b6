package flush

import (
	"context"
	"time"

	"github.com/relex/gotils/channels"
)

// Request is the future of an explicit flush
//
// It's resolved after the flush cycle which starts after the request has been made, including all the sending
// attempts of that cycle
type Request struct {
	done *channels.SignalAwaitable
	sent int
	err  error
}

func newRequest() *Request {
	return &Request{
		done: channels.NewSignalAwaitable(),
	}
}

// NewCompletedRequest creates a resolved Request with the given result
func NewCompletedRequest(sent int, err error) *Request {
	req := newRequest()
	req.complete(sent, err)
	return req
}

// Done returns an Awaitable which is signaled when the request is resolved
func (req *Request) Done() channels.Awaitable {
	return req.done
}

// Wait waits until the request is resolved or the context is done
//
// Returns the number of entries sent by the flush cycle and its error, or the context error
func (req *Request) Wait(ctx context.Context) (int, error) {
	select {
	case <-req.done.Channel():
		return req.sent, req.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// WaitTimeout waits until the request is resolved or timeout, zero or negative timeout means infinite
//
// Returns false on timeout
func (req *Request) WaitTimeout(timeout time.Duration) bool {
	if timeout <= 0 {
		req.done.WaitForever()
		return true
	}
	return req.done.Wait(timeout)
}

// Result returns the result of a resolved request. It must not be called before Done is signaled.
func (req *Request) Result() (int, error) {
	return req.sent, req.err
}

func (req *Request) complete(sent int, err error) {
	req.sent = sent
	req.err = err
	req.done.Signal()
}
