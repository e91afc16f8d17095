package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var ErrLimiterClosed = errors.New("rate limiter closed")

// Config sizes a Limiter. RatePerSecond is the reservoir capacity, refilled
// to full once per RefillInterval. MaxConcurrent caps simultaneous holders of
// a slot independently of token availability. TickSource overrides the
// internal timer, used by tests to drive refills deterministically.
type Config struct {
	RatePerSecond  int
	MaxConcurrent  int
	RefillInterval time.Duration
	TickSource     <-chan time.Time
}

// Limiter is a token bucket with a FIFO wait queue plus a separate semaphore
// for the concurrency ceiling. Tokens gate how many operations may start per
// refill interval; slots gate how many run at once.
type Limiter struct {
	mu       sync.Mutex
	capacity int
	tokens   int
	waiters  []chan struct{}

	slots    chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

func New(cfg Config) *Limiter {
	capacity := cfg.RatePerSecond
	if capacity < 1 {
		capacity = 1
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	l := &Limiter{
		capacity: capacity,
		tokens:   capacity,
		slots:    make(chan struct{}, maxConcurrent),
		stop:     make(chan struct{}),
	}

	if cfg.TickSource != nil {
		go l.refillLoop(cfg.TickSource, nil)
	} else {
		interval := cfg.RefillInterval
		if interval <= 0 {
			interval = time.Second
		}
		ticker := time.NewTicker(interval)
		go l.refillLoop(ticker.C, ticker)
	}

	return l
}

func (l *Limiter) refillLoop(ticks <-chan time.Time, ticker *time.Ticker) {
	if ticker != nil {
		defer ticker.Stop()
	}
	for {
		select {
		case <-ticks:
			l.refill()
		case <-l.stop:
			return
		}
	}
}

// refill resets the reservoir to capacity and grants tokens to queued
// waiters in arrival order.
func (l *Limiter) refill() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tokens = l.capacity
	for l.tokens > 0 && len(l.waiters) > 0 {
		waiter := l.waiters[0]
		l.waiters = l.waiters[1:]
		l.tokens--
		close(waiter)
	}
}

// Wait blocks until a token is available. Queued callers are served FIFO.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	if l.tokens > 0 {
		l.tokens--
		l.mu.Unlock()
		return nil
	}
	waiter := make(chan struct{})
	l.waiters = append(l.waiters, waiter)
	l.mu.Unlock()

	select {
	case <-waiter:
		return nil
	case <-ctx.Done():
		l.abandonWaiter(waiter)
		return ctx.Err()
	case <-l.stop:
		return ErrLimiterClosed
	}
}

// abandonWaiter removes a cancelled waiter from the queue. If the waiter was
// already granted a token in the meantime, the token is passed on rather
// than lost.
func (l *Limiter) abandonWaiter(waiter chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, w := range l.waiters {
		if w == waiter {
			l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
			return
		}
	}

	if len(l.waiters) > 0 {
		next := l.waiters[0]
		l.waiters = l.waiters[1:]
		close(next)
		return
	}
	if l.tokens < l.capacity {
		l.tokens++
	}
}

// AcquireSlot blocks until a concurrency slot is free. The slot is held
// across all of an operation's retries; release it with ReleaseSlot.
func (l *Limiter) AcquireSlot(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stop:
		return ErrLimiterClosed
	}
}

func (l *Limiter) ReleaseSlot() {
	<-l.slots
}

// Close stops the refill loop and unblocks pending waiters with
// ErrLimiterClosed.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}
