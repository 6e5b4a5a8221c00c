package idempotency

import (
	"context"
	"time"
)

// RunCleanup removes expired records every interval until ctx is cancelled.
func RunCleanup(ctx context.Context, store Store, interval time.Duration, logger Logger) {
	if store == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := store.CleanupExpired(ctx, now, 0); err != nil && logger != nil {
				logger.Printf("idempotency: cleanup failed: %v", err)
			}
		}
	}
}
