// Package flush merges flush triggers of a sink into one serialized stream of flush cycles
package flush

import (
	"sync"
	"time"

	"github.com/relex/gotils/channels"
)

// Trigger tells why a flush cycle is started
type Trigger int

// List of triggers
const (
	TriggerNone Trigger = iota
	TriggerTimer
	TriggerCount
	TriggerExplicit
	TriggerShutdown
)

func (t Trigger) String() string {
	switch t {
	case TriggerTimer:
		return "timer"
	case TriggerCount:
		return "count"
	case TriggerExplicit:
		return "explicit"
	case TriggerShutdown:
		return "shutdown"
	default:
		return "none"
	}
}

// Scheduler merges timer, count and explicit triggers into a single-slot signal consumed by one worker
//
// Triggers arriving while a cycle is running are coalesced into at most one pending cycle. The reason of the pending
// cycle is the last trigger.
type Scheduler struct {
	mutex     sync.Mutex
	signal    chan struct{}
	reason    Trigger
	waiting   []*Request // explicit requests to be resolved by the next cycle
	closed    bool
	stopTimer *channels.SignalAwaitable
	stopOnce  sync.Once
}

// Cycle is one flush cycle taken from Scheduler
type Cycle struct {
	Reason   Trigger
	requests []*Request
}

// NewScheduler creates a Scheduler without timer
func NewScheduler() *Scheduler {
	return &Scheduler{
		mutex:     sync.Mutex{},
		signal:    make(chan struct{}, 1),
		reason:    TriggerNone,
		waiting:   nil,
		closed:    false,
		stopTimer: channels.NewSignalAwaitable(),
		stopOnce:  sync.Once{},
	}
}

// StartTimer launches a background timer triggering flush every interval, until StopTimer or Close
//
// Zero or negative interval disables the timer
func (s *Scheduler) StartTimer(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Trigger(TriggerTimer)
			case <-s.stopTimer.Channel():
				return
			}
		}
	}()
}

// StopTimer stops the background timer if any, can be called many times
func (s *Scheduler) StopTimer() {
	s.stopOnce.Do(s.stopTimer.Signal)
}

// Trigger requests a flush cycle without waiting for its result
func (s *Scheduler) Trigger(reason Trigger) {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return
	}
	s.reason = reason
	s.mutex.Unlock()
	s.notify()
}

// Request requests a flush cycle and returns its future
//
// After Close, the returned request is resolved immediately with zero entries sent
func (s *Scheduler) Request(reason Trigger) *Request {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return NewCompletedRequest(0, nil)
	}
	req := newRequest()
	s.waiting = append(s.waiting, req)
	s.reason = reason
	s.mutex.Unlock()
	s.notify()
	return req
}

// Ready returns the channel to receive from before Begin
func (s *Scheduler) Ready() <-chan struct{} {
	return s.signal
}

// Begin takes the pending trigger reason and all waiting requests into a new cycle
func (s *Scheduler) Begin() *Cycle {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	cycle := &Cycle{
		Reason:   s.reason,
		requests: s.waiting,
	}
	s.reason = TriggerNone
	s.waiting = nil
	return cycle
}

// Close stops the timer, resolves waiting requests with zero entries sent and ignores further triggers
func (s *Scheduler) Close() {
	s.StopTimer()
	s.mutex.Lock()
	leftovers := s.waiting
	s.waiting = nil
	s.closed = true
	s.mutex.Unlock()
	for _, req := range leftovers {
		req.complete(0, nil)
	}
}

// NumRequests returns the number of explicit requests resolved by this cycle
func (cycle *Cycle) NumRequests() int {
	return len(cycle.requests)
}

// Complete resolves all explicit requests of this cycle
func (cycle *Cycle) Complete(sent int, err error) {
	for _, req := range cycle.requests {
		req.complete(sent, err)
	}
}

func (s *Scheduler) notify() {
	select {
	case s.signal <- struct{}{}:
	default:
		// a cycle is already pending
	}
}
