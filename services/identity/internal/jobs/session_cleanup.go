package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/identity/internal/config"
)

type SessionPurger interface {
	PurgeRefreshSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// StartSessionCleanupJob deletes expired and revoked refresh sessions on
// every tick until ctx is cancelled. The returned channel closes when the
// loop exits.
func StartSessionCleanupJob(ctx context.Context, cfg config.Config, store SessionPurger, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if !cfg.SessionCleanupEnabled || store == nil {
		close(done)
		return done
	}
	interval := cfg.SessionCleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	timeout := cfg.SessionCleanupTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tickCtx, cancel := context.WithTimeout(ctx, timeout)
				purged, err := store.PurgeRefreshSessions(tickCtx, time.Now().UTC())
				cancel()
				if err != nil {
					logger.Warn("session cleanup failed", zap.Error(err))
					continue
				}
				if purged > 0 {
					logger.Info("session cleanup purged sessions", zap.Int64("count", purged))
				}
			}
		}
	}()
	return done
}
