package refdata

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/buildlab/internal/domain/model"
	"github.com/okian/buildlab/pkg/metrics"
)

// Cache fronts a Source with a TTL snapshot. Concurrent misses share one
// fetch. A zero TTL disables caching but still collapses concurrent misses.
type Cache struct {
	src   Source
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	data    model.Datasets
	fetched time.Time
}

// NewCache wraps src.
func NewCache(src Source, ttl time.Duration) *Cache {
	return &Cache{src: src, ttl: ttl, now: time.Now}
}

// FetchAll implements Source.
func (c *Cache) FetchAll(ctx context.Context) (model.Datasets, error) {
	if data, ok := c.fresh(); ok {
		metrics.RecordDatasetCacheHit()
		return data, nil
	}
	metrics.RecordDatasetCacheMiss()

	// The shared fetch must not die with whichever caller started it.
	ch := c.group.DoChan("datasets", func() (any, error) {
		data, err := c.src.FetchAll(context.WithoutCancel(ctx))
		if err != nil {
			return model.Datasets{}, err
		}
		c.store(data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return model.Datasets{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return model.Datasets{}, res.Err
		}
		return res.Val.(model.Datasets), nil
	}
}

// Invalidate drops the snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = time.Time{}
	c.data = model.Datasets{}
}

func (c *Cache) fresh() (model.Datasets, bool) {
	if c.ttl <= 0 {
		return model.Datasets{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetched.IsZero() || c.now().Sub(c.fetched) >= c.ttl {
		return model.Datasets{}, false
	}
	return c.data, true
}

func (c *Cache) store(data model.Datasets) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.fetched = c.now()
}
