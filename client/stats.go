package client

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sendgrid/rest"

	"github.com/tupad/organizador/core/dashboard"
)

const (
	statsKey  = "dashboard_stats"
	statsPath = "/api/dashboard/stats"
)

// StatsCache serves the dashboard aggregates, refetching them once the TTL is over.
type StatsCache struct {
	client *Client
	cache  *cache.Cache
}

func NewStatsCache(c *Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StatsCache{client: c, cache: cache.New(ttl, 2*ttl)}
}

func (s *StatsCache) Get(ctx context.Context) (dashboard.Stats, error) {
	if v, ok := s.cache.Get(statsKey); ok {
		return v.(dashboard.Stats), nil
	}

	var stats dashboard.Stats
	if err := s.client.Do(ctx, rest.Get, statsPath, nil, nil, &stats); err != nil {
		return stats, err
	}
	s.Set(stats)
	return stats, nil
}

func (s *StatsCache) Set(stats dashboard.Stats) {
	s.cache.SetDefault(statsKey, stats)
}

func (s *StatsCache) Invalidate() {
	s.cache.Delete(statsKey)
}
