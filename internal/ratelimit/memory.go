package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// MemoryLimiter is a per-key token bucket kept in process memory.
// It is used when Redis is not configured.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int     // max tokens
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	tokens   float64
	lastTime time.Time
}

// NewMemoryLimiter allows burst hits immediately and refills max tokens per window.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(max) / window.Seconds(),
		burst:   max,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.cleanup(5*time.Minute, 2*window)
	return l
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastTime: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.lastTime).Seconds()
	b.tokens = math.Min(float64(l.burst), b.tokens+elapsed*l.rate)
	b.lastTime = now

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
		return Result{Allowed: false, RetryAfter: wait}, nil
	}
	b.tokens--
	return Result{Allowed: true, Remaining: int64(b.tokens)}, nil
}

// Close stops the background eviction loop.
func (l *MemoryLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) cleanup(every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			cutoff := l.now().Add(-idle)
			for key, b := range l.buckets {
				if b.lastTime.Before(cutoff) {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
