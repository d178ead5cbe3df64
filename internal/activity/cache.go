package activity

import (
	"context"
	"time"

	"github.com/Egor213/LogiStream/internal/domain"
	"github.com/patrickmn/go-cache"
)

const (
	keyActivities = "activities"
	keyCurrent    = "current"
)

// Cached memoizes successful upstream reads for ttl. Errors are not cached.
type Cached struct {
	source Source
	cache  *cache.Cache
}

func NewCached(source Source, ttl time.Duration) *Cached {
	return &Cached{
		source: source,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (c *Cached) Activities(ctx context.Context) ([]string, error) {
	if v, ok := c.cache.Get(keyActivities); ok {
		return v.([]string), nil
	}
	activities, err := c.source.Activities(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(keyActivities, activities)
	return activities, nil
}

func (c *Cached) CurrentActivity(ctx context.Context) (*domain.Activity, error) {
	if v, ok := c.cache.Get(keyCurrent); ok {
		return v.(*domain.Activity), nil
	}
	current, err := c.source.CurrentActivity(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(keyCurrent, current)
	return current, nil
}

func (c *Cached) Invalidate() {
	c.cache.Flush()
}
