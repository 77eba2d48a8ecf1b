// Package worker runs background maintenance loops.
package worker

import (
	"context"
	"time"

	"order-api/internal/auth"
	"order-api/internal/util"

	"go.uber.org/zap"
)

// RevocationSweeper periodically drops revoked token ids whose tokens have
// naturally expired, keeping the revocation list bounded. Expired tokens are
// rejected by validation regardless, so pruning never changes behavior.
type RevocationSweeper struct {
	blacklist *auth.Blacklist
	interval  time.Duration
	logger    *zap.Logger
}

// NewRevocationSweeper creates a sweeper over the authority's blacklist.
func NewRevocationSweeper(blacklist *auth.Blacklist, interval time.Duration) *RevocationSweeper {
	return &RevocationSweeper{
		blacklist: blacklist,
		interval:  interval,
		logger:    util.GetLogger(),
	}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *RevocationSweeper) Start(ctx context.Context) error {
	w.logger.Info("Starting revocation sweeper", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Revocation sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep prunes expired entries once.
func (w *RevocationSweeper) Sweep() {
	pruned := w.blacklist.PruneExpired(time.Now())
	if pruned > 0 {
		util.RevokedTokensPrunedTotal.Add(float64(pruned))
		w.logger.Info("Pruned expired revocations", zap.Int("count", pruned))
	}
}
