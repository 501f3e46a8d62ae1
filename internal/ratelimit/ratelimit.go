package ratelimit

import (
	"sync"
	"time"
)

type entry struct {
	count       int
	windowStart time.Time
}

// Limiter is a fixed-window counter keyed by client address. The count
// resets only when a full window has elapsed, so bursts across a window
// boundary can admit up to twice the nominal rate. That matches the
// deployed behavior and is kept deliberately.
type Limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]entry

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

func New(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:     max,
		window:  window,
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// Allow admits or rejects a request from addr.
func (l *Limiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[addr]
	if !ok || now.Sub(e.windowStart) >= l.window {
		l.entries[addr] = entry{count: 1, windowStart: now}
		return true
	}
	e.count++
	l.entries[addr] = e
	return e.count <= l.max
}

// StartSweep launches a janitor that drops entries whose window has fully
// elapsed, bounding memory growth. Call Stop on shutdown.
func (l *Limiter) StartSweep(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				l.sweep()
			}
		}
	}()
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for addr, e := range l.entries {
		if now.Sub(e.windowStart) >= l.window {
			delete(l.entries, addr)
		}
	}
}

func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
