// Package admission bounds the number of concurrently in-flight POST
// operations. The limiter is a capability handed to every worker; the counter
// behind it is the only piece of admission state shared across workers.
package admission

import "sync"

// Limiter is a bounded counter with non-blocking acquisition. There is no
// queuing: a caller that cannot get a slot is rejected immediately.
//
// Thread safety:
// All methods are safe for concurrent use. The check-and-increment in
// TryAcquire is a single critical section, so the count can never overshoot
// the limit even under contention.
type Limiter struct {
	mu    sync.Mutex
	count int
	limit int
}

// New creates a Limiter admitting at most limit concurrent holders.
func New(limit int) *Limiter {
	return &Limiter{limit: limit}
}

// TryAcquire takes a slot if one is free. It never blocks; false means the
// limit is reached and the caller should reject the request.
func (l *Limiter) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count >= l.limit {
		return false
	}
	l.count++
	return true
}

// Release returns a slot. It must be called exactly once per successful
// TryAcquire, on every exit path. Releasing without a matching acquire is a
// programming error.
func (l *Limiter) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		panic("admission: release without acquire")
	}
	l.count--
}

// InFlight reports the current number of held slots.
func (l *Limiter) InFlight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Limit reports the configured maximum.
func (l *Limiter) Limit() int {
	return l.limit
}
