package datasource

import (
	"context"
	"fmt"
	"io"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/feed"
	"github.com/yourusername/match-predictor/internal/metrics"
)

// FeedCache keeps recent feed responses in memory, keyed by query
type FeedCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewFeedCache creates a feed cache whose entries expire after ttl
func NewFeedCache(ttl time.Duration) *FeedCache {
	return &FeedCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func cacheKey(q Query) string {
	return fmt.Sprintf("%d:%d", q.CountryCode, q.Count)
}

// Get returns cached matches for the query
func (fc *FeedCache) Get(q Query) ([]feed.RawMatch, bool) {
	v, found := fc.cache.Get(cacheKey(q))
	metrics.RecordCacheLookup(found)
	if !found {
		return nil, false
	}
	matches, ok := v.([]feed.RawMatch)
	return matches, ok
}

// Set stores matches for the query
func (fc *FeedCache) Set(q Query, matches []feed.RawMatch) {
	fc.cache.Set(cacheKey(q), matches, fc.ttl)
}

// Flush drops every cached response
func (fc *FeedCache) Flush() {
	fc.cache.Flush()
}

// ItemCount returns the number of cached responses, expired ones included
func (fc *FeedCache) ItemCount() int {
	return fc.cache.ItemCount()
}

// CachedFeedSource wraps a FeedSource with a FeedCache
type CachedFeedSource struct {
	source FeedSource
	cache  *FeedCache
	logger *logrus.Entry
}

// NewCachedFeedSource creates a caching FeedSource. A zero ttl disables caching.
func NewCachedFeedSource(source FeedSource, ttl time.Duration, logger *logrus.Logger) FeedSource {
	if ttl <= 0 {
		return source
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &CachedFeedSource{
		source: source,
		cache:  NewFeedCache(ttl),
		logger: logger.WithField("source", source.Name()),
	}
}

// Name returns the wrapped source name
func (c *CachedFeedSource) Name() string {
	return c.source.Name()
}

// FetchMatches serves from cache when possible, otherwise fetches and caches
func (c *CachedFeedSource) FetchMatches(ctx context.Context, q Query) ([]feed.RawMatch, error) {
	matches, _, err := c.FetchMatchesCached(ctx, q)
	return matches, err
}

// FetchMatchesCached is FetchMatches that also reports whether the cache served the query
func (c *CachedFeedSource) FetchMatchesCached(ctx context.Context, q Query) ([]feed.RawMatch, bool, error) {
	if matches, ok := c.cache.Get(q); ok {
		c.logger.WithField("cache_key", cacheKey(q)).Debug("Cache hit for feed query")
		return matches, true, nil
	}

	matches, err := c.source.FetchMatches(ctx, q)
	if err != nil {
		return nil, false, err
	}
	c.cache.Set(q, matches)
	return matches, false, nil
}
