package board

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/events"
)

const (
	cacheKey      = "huwaari:board:snapshot"
	generationKey = "huwaari:board:generation"
)

// Cache keeps the last snapshot in Redis. A nil client disables caching.
type Cache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCache(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{redis: redisClient, ttl: ttl, logger: logger}
}

func (c *Cache) Snapshot(ctx context.Context, src Source) (Snapshot, error) {
	if c == nil || c.redis == nil || c.ttl <= 0 {
		return Load(ctx, src)
	}

	raw, err := c.redis.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var snap Snapshot
		if err := json.Unmarshal(raw, &snap); err == nil {
			return snap, nil
		}
		c.logger.Warn("discarding unreadable board cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("board cache read failed", zap.Error(err))
	}

	generation, genErr := c.generation(ctx, c.redis)
	snap, err := Load(ctx, src)
	if err != nil {
		return Snapshot{}, err
	}
	if genErr != nil {
		c.logger.Warn("board cache generation read failed", zap.Error(genErr))
		return snap, nil
	}
	if err := c.store(ctx, snap, generation); err != nil {
		c.logger.Warn("board cache write failed", zap.Error(err))
	}
	return snap, nil
}

// store writes snap only if no invalidation happened since generation was
// read, so a load that raced a write never outlives it.
func (c *Cache) store(ctx context.Context, snap Snapshot, generation int64) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != generation {
			return redis.TxFailedErr
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey, payload, c.ttl)
			return nil
		})
		return err
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		c.logger.Debug("board cache write skipped, data changed during load")
		return nil
	}
	return err
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *Cache) generation(ctx context.Context, cmd getter) (int64, error) {
	value, err := cmd.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return value, err
}

func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, cacheKey)
		return nil
	})
	return err
}

// Watch drops the cached snapshot on every data-updated event until ctx is
// done or updates is closed.
func (c *Cache) Watch(ctx context.Context, updates <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-updates:
			if !ok {
				return
			}
			if evt.Kind != events.KindDataUpdated {
				continue
			}
			if err := c.Invalidate(ctx); err != nil {
				c.logger.Warn("board cache invalidate failed", zap.Error(err))
			}
		}
	}
}
