package http

import (
	"context"
	"sync"

	"github.com/Ariuko0507/huwaari/services/timetable/internal/db"
	"github.com/Ariuko0507/huwaari/services/timetable/internal/events"
)

type countSource interface {
	Counts(ctx context.Context) (db.Counts, error)
}

// statsCache holds the dashboard counts until the next data-updated event.
type statsCache struct {
	mu     sync.Mutex
	source countSource
	counts *db.Counts
}

func newStatsCache(source countSource) *statsCache {
	return &statsCache{source: source}
}

func (c *statsCache) Get(ctx context.Context) (db.Counts, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts != nil {
		return *c.counts, nil
	}
	counts, err := c.source.Counts(ctx)
	if err != nil {
		return db.Counts{}, err
	}
	c.counts = &counts
	return counts, nil
}

func (c *statsCache) reset() {
	c.mu.Lock()
	c.counts = nil
	c.mu.Unlock()
}

// WatchStats drops the cached dashboard counts on every data-updated event
// until ctx is done or updates is closed.
func (s *Server) WatchStats(ctx context.Context, updates <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-updates:
			if !ok {
				return
			}
			if evt.Kind == events.KindDataUpdated {
				s.stats.reset()
			}
		}
	}
}
