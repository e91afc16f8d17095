package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_WaitConsumesReservoir(t *testing.T) {
	ticks := make(chan time.Time)
	l := New(Config{RatePerSecond: 2, MaxConcurrent: 3, TickSource: ticks})
	defer l.Close()

	ctx := context.Background()

	// Two tokens available immediately
	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))

	// Third waits until the next refill
	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := l.Wait(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiter_RefillWakesWaitersFIFO(t *testing.T) {
	ticks := make(chan time.Time)
	l := New(Config{RatePerSecond: 1, MaxConcurrent: 3, TickSource: ticks})
	defer l.Close()

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx)) // drain the reservoir

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	ready := make(chan struct{}, 3)

	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ready <- struct{}{}
			// Small stagger so queue order matches n
			require.NoError(t, l.Wait(ctx))
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
		}(i)
		<-ready
		time.Sleep(20 * time.Millisecond)
	}

	// Each refill grants exactly one token (capacity 1)
	for i := 0; i < 3; i++ {
		ticks <- time.Now()
		time.Sleep(20 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestLimiter_RefillResetsToCapacityNotAdditive(t *testing.T) {
	ticks := make(chan time.Time)
	l := New(Config{RatePerSecond: 2, MaxConcurrent: 1, TickSource: ticks})
	defer l.Close()

	ctx := context.Background()

	// Two refills back to back must not accumulate beyond capacity
	ticks <- time.Now()
	ticks <- time.Now()
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, l.Wait(ctx))
	require.NoError(t, l.Wait(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(waitCtx), context.DeadlineExceeded)
}

func TestLimiter_ConcurrencyCeiling(t *testing.T) {
	l := New(Config{RatePerSecond: 100, MaxConcurrent: 3, RefillInterval: 10 * time.Millisecond})
	defer l.Close()

	ctx := context.Background()

	var inFlight int32
	var peak int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(ctx))
		require.NoError(t, l.AcquireSlot(ctx))
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer l.ReleaseSlot()
			n := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, peak, int32(3))
	assert.Greater(t, peak, int32(0))
}

func TestLimiter_CloseUnblocksWaiters(t *testing.T) {
	ticks := make(chan time.Time)
	l := New(Config{RatePerSecond: 1, MaxConcurrent: 1, TickSource: ticks})

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx))

	done := make(chan error, 1)
	go func() {
		done <- l.Wait(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	l.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrLimiterClosed)
	case <-time.After(time.Second):
		t.Fatal("waiter was not unblocked by Close")
	}
}

func TestLimiter_CancelledWaiterReturnsToken(t *testing.T) {
	ticks := make(chan time.Time)
	l := New(Config{RatePerSecond: 1, MaxConcurrent: 1, TickSource: ticks})
	defer l.Close()

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx))

	cancelCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- l.Wait(cancelCtx)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// The abandoned spot must not wedge the queue
	ticks <- time.Now()
	waitCtx, cancel2 := context.WithTimeout(ctx, time.Second)
	defer cancel2()
	assert.NoError(t, l.Wait(waitCtx))
}
