package util

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunOnce(t *testing.T) {
	calls := int64(0)
	winners := int64(0)
	returned := int64(0)

	once := NewRunOnce()
	assert.False(t, once.Invoked())

	wg := &sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			called := once.Do(func() {
				time.Sleep(50 * time.Millisecond)
				atomic.AddInt64(&calls, 1)
			})
			if called {
				atomic.AddInt64(&winners, 1)
			}
			// every caller returns after the function has completed
			assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
			atomic.AddInt64(&returned, 1)
		}()
	}
	wg.Wait()

	assert.True(t, once.Invoked())
	assert.True(t, once.Done().Peek())
	assert.Equal(t, int64(1), calls)
	assert.Equal(t, int64(1), winners)
	assert.Equal(t, int64(100), returned)
	assert.False(t, once.Do(func() { atomic.AddInt64(&calls, 1) }))
	assert.Equal(t, int64(1), calls)
}
