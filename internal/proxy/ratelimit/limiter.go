// Package ratelimit enforces a per-operation sliding-window request
// budget. The check never touches the network and runs before any
// backend call.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"github.com/vietddude/memgate/internal/core/domain"
)

// Window is the width of the sliding window.
const Window = 60 * time.Second

// Budgets maps each operation to its maximum requests per window.
// Operations absent from the table are never limited, so new operations
// pass through until a budget is assigned.
var Budgets = map[domain.OperationKey]int{
	domain.OpRemember: 30,
	domain.OpRecall:   60,
	domain.OpSearch:   60,
	domain.OpForget:   10,
	domain.OpContext:  20,
	domain.OpObserve:  30,
	domain.OpHealth:   60,
}

// Limiter tracks request timestamps per operation. Safe for concurrent
// use; prune, compare, and append happen under one critical section so
// two concurrent callers cannot both take the last slot.
type Limiter struct {
	mu      sync.Mutex
	windows map[domain.OperationKey][]time.Time
	budgets map[domain.OperationKey]int
	window  time.Duration

	now func() time.Time // replaceable in tests
}

// New creates a limiter with the fixed per-operation budgets.
func New() *Limiter {
	return &Limiter{
		windows: make(map[domain.OperationKey][]time.Time),
		budgets: Budgets,
		window:  Window,
		now:     time.Now,
	}
}

// CheckAndRecord admits the request and records its timestamp, or fails
// with a rate-limited outcome carrying the time until a slot frees up.
func (l *Limiter) CheckAndRecord(op domain.OperationKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	max, limited := l.budgets[op]
	if !limited {
		return nil
	}

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.windows[op][:0]
	for _, t := range l.windows[op] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.windows[op] = kept

	if len(kept) >= max {
		oldest := kept[0]
		retryAfter := l.window - now.Sub(oldest)
		seconds := math.Ceil(retryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		return domain.NewRateLimited(op, time.Duration(seconds)*time.Second)
	}

	l.windows[op] = append(kept, now)
	return nil
}

// Remaining reports how many requests the operation may still make in the
// current window. Unlimited operations report -1.
func (l *Limiter) Remaining(op domain.OperationKey) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	max, limited := l.budgets[op]
	if !limited {
		return -1
	}

	cutoff := l.now().Add(-l.window)
	count := 0
	for _, t := range l.windows[op] {
		if t.After(cutoff) {
			count++
		}
	}
	if count > max {
		count = max
	}
	return max - count
}
