package session

import (
	"context"
	"time"
)

// Sweeper periodically evicts expired sessions. Expiry is still enforced
// lazily on every access; the sweeper only bounds how long an untouched
// record lingers in memory and on disk.
type Sweeper struct {
	store    *Store
	interval time.Duration
}

// NewSweeper creates a Sweeper. If interval is <= 0, it defaults to 15m.
func NewSweeper(store *Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Sweeper{store: store, interval: interval}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.store.SweepExpired()
		}
	}
}
