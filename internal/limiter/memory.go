package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory is an in-process rolling-window limiter, used when Redis is not
// configured. Each (key, window) pair keeps a timestamp log bounded to the
// window length.
type Memory struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewMemory creates an in-process limiter.
func NewMemory() *Memory {
	return &Memory{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Allow checks every window in the budget under one lock so concurrent
// requests for the same key cannot undercount.
func (m *Memory) Allow(ctx context.Context, key string, budget Budget) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	for _, rate := range budget {
		k := windowKey(key, rate.Window)
		kept := prune(m.hits[k], now.Add(-rate.Window))
		m.hits[k] = kept
		if len(kept) >= rate.Limit {
			return false, nil
		}
	}

	for _, rate := range budget {
		k := windowKey(key, rate.Window)
		m.hits[k] = append(m.hits[k], now)
	}

	return true, nil
}

func windowKey(key string, window time.Duration) string {
	return fmt.Sprintf("%s|%d", key, int64(window.Seconds()))
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
