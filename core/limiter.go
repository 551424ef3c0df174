package core

import (
	"fmt"
	"sync"
)

// ModelLimiter caps how many model calls a single run may issue, so a
// routing loop that keeps requesting tools cannot spin the model forever.
// A limit of 0 means unbounded.
type ModelLimiter struct {
	limit int
	used  int
	mu    sync.Mutex
}

// NewModelLimiter creates a limiter with the given call budget.
func NewModelLimiter(limit int) *ModelLimiter {
	return &ModelLimiter{limit: limit}
}

// Increment consumes one call and fails once the budget is spent.
func (l *ModelLimiter) Increment() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.used++
	if l.limit > 0 && l.used > l.limit {
		return fmt.Errorf("model call limit reached: %d", l.limit)
	}

	return nil
}

// Count reports calls consumed so far.
func (l *ModelLimiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.used
}

// Remaining reports calls left, -1 when unbounded.
func (l *ModelLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.limit == 0 {
		return -1
	}

	return l.limit - l.used
}
