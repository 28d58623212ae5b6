package flush

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func isReady(s *Scheduler) bool {
	select {
	case <-s.Ready():
		return true
	default:
		return false
	}
}

func TestSchedulerCoalescing(t *testing.T) {
	s := NewScheduler()
	assert.False(t, isReady(s))

	s.Trigger(TriggerCount)
	s.Trigger(TriggerCount)
	s.Trigger(TriggerTimer)
	assert.True(t, isReady(s))
	assert.False(t, isReady(s), "redundant triggers must not stack")

	cycle := s.Begin()
	assert.Equal(t, TriggerTimer, cycle.Reason, "last trigger wins")
	assert.Equal(t, 0, cycle.NumRequests())
}

func TestSchedulerRequest(t *testing.T) {
	s := NewScheduler()
	req1 := s.Request(TriggerExplicit)
	req2 := s.Request(TriggerExplicit)
	assert.True(t, isReady(s))
	assert.False(t, req1.Done().Peek())

	cycle := s.Begin()
	assert.Equal(t, TriggerExplicit, cycle.Reason)
	assert.Equal(t, 2, cycle.NumRequests())

	// request made during a running cycle belongs to the next cycle
	req3 := s.Request(TriggerExplicit)
	cycle.Complete(5, nil)

	sent, err := req1.Wait(context.Background())
	assert.Equal(t, 5, sent)
	assert.NoError(t, err)
	sent, err = req2.Result()
	assert.Equal(t, 5, sent)
	assert.NoError(t, err)
	assert.False(t, req3.Done().Peek())

	assert.True(t, isReady(s))
	next := s.Begin()
	next.Complete(0, errors.New("failed"))
	sent, err = req3.Wait(context.Background())
	assert.Equal(t, 0, sent)
	assert.EqualError(t, err, "failed")
}

func TestSchedulerRequestWaitContext(t *testing.T) {
	s := NewScheduler()
	req := s.Request(TriggerExplicit)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := req.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, req.WaitTimeout(10*time.Millisecond))
}

func TestSchedulerClose(t *testing.T) {
	s := NewScheduler()
	pending := s.Request(TriggerExplicit)
	s.Close()

	assert.True(t, pending.Done().Peek())
	sent, err := pending.Result()
	assert.Equal(t, 0, sent)
	assert.NoError(t, err)

	after := s.Request(TriggerExplicit)
	assert.True(t, after.WaitTimeout(0))

	// drain the signal left by the first request
	isReady(s)
	s.Trigger(TriggerTimer)
	assert.False(t, isReady(s), "triggers are ignored after close")
}

func TestSchedulerTimer(t *testing.T) {
	s := NewScheduler()
	s.StartTimer(20 * time.Millisecond)
	defer s.Close()

	select {
	case <-s.Ready():
		assert.Equal(t, TriggerTimer, s.Begin().Reason)
	case <-time.After(2 * time.Second):
		assert.Fail(t, "timer didn't trigger")
	}

	s.StopTimer()
	time.Sleep(60 * time.Millisecond)
	isReady(s) // tick may have fired right before stop
	time.Sleep(60 * time.Millisecond)
	assert.False(t, isReady(s))
}

func TestSchedulerTimerDisabled(t *testing.T) {
	s := NewScheduler()
	s.StartTimer(0)
	time.Sleep(50 * time.Millisecond)
	assert.False(t, isReady(s))
}

func TestSchedulerStopTimerThenClose(t *testing.T) {
	s := NewScheduler()
	s.StartTimer(time.Hour)
	assert.NotPanics(t, func() {
		s.StopTimer()
		s.StopTimer()
		s.Close()
		s.Close()
	})
	sent, err := s.Request(TriggerExplicit).Result()
	assert.Equal(t, 0, sent)
	assert.NoError(t, err)
}
