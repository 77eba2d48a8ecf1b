package auth

import (
	"sync"
	"time"
)

// Blacklist is the set of revoked token ids. Each entry carries the token's
// natural expiry: once that instant passes the token is rejected by signature
// validation anyway, so the entry can be dropped without changing behavior.
type Blacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

// NewBlacklist creates an empty revocation list.
func NewBlacklist() *Blacklist {
	return &Blacklist{entries: make(map[string]time.Time)}
}

// Add marks a jti as revoked until expiresAt. Adding a present jti is a no-op.
func (b *Blacklist) Add(jti string, expiresAt time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.entries[jti]; ok {
		return
	}
	b.entries[jti] = expiresAt
}

// Contains reports whether a jti has been revoked.
func (b *Blacklist) Contains(jti string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.entries[jti]
	return ok
}

// PruneExpired removes entries whose token has naturally expired and returns
// the number removed.
func (b *Blacklist) PruneExpired(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	pruned := 0
	for jti, expiresAt := range b.entries {
		if !expiresAt.After(now) {
			delete(b.entries, jti)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of revoked entries currently held.
func (b *Blacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
