// Package redis provides a read-through Redis cache for fetched price
// series, keeping repeated dashboard requests for the same symbol/period
// off the upstream data source.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"analysis-systemv1/internal/collector"
	"analysis-systemv1/internal/metrics"
	"analysis-systemv1/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const defaultTTL = 5 * time.Minute

// CacheConfig configures the series cache.
type CacheConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // zero means defaultTTL
}

// Cache wraps a collector.Fetcher with a Redis layer. Redis failures
// degrade to a direct fetch. The cache never turns a warm path into an
// error path.
type Cache struct {
	client *goredis.Client
	next   collector.Fetcher
	ttl    time.Duration
	m      *metrics.Metrics // nil disables instrumentation
}

// New creates a Cache in front of next and pings the Redis server.
// m may be nil.
func New(cfg CacheConfig, next collector.Fetcher, m *metrics.Metrics) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	log.Printf("[redis] series cache connected to %s (ttl=%s)", cfg.Addr, ttl)
	return &Cache{client: client, next: next, ttl: ttl, m: m}, nil
}

// Name identifies the composed source, e.g. "yahoo+cache".
func (c *Cache) Name() string { return c.next.Name() + "+cache" }

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// Close releases the Redis connection.
func (c *Cache) Close() error { return c.client.Close() }

func seriesKey(symbol, period string) string {
	return "series:" + symbol + ":" + period
}

// FetchSeries returns the cached series for symbol/period, falling through
// to the wrapped fetcher on a miss. Only successful fetches are cached;
// no-data and transport errors always propagate uncached.
func (c *Cache) FetchSeries(ctx context.Context, symbol, period string) (model.PriceSeries, error) {
	key := seriesKey(symbol, period)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var series model.PriceSeries
		if jerr := json.Unmarshal(raw, &series); jerr == nil && series.Len() > 0 {
			if c.m != nil {
				c.m.CacheHits.Inc()
			}
			return series, nil
		}
		// Corrupt entry: drop it and refetch
		c.client.Del(ctx, key)
	} else if err != goredis.Nil {
		log.Printf("[redis] get %s failed, fetching direct: %v", key, err)
	}

	if c.m != nil {
		c.m.CacheMisses.Inc()
	}
	series, err := c.next.FetchSeries(ctx, symbol, period)
	if err != nil {
		return model.PriceSeries{}, err
	}

	if payload, jerr := json.Marshal(series); jerr == nil {
		if serr := c.client.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			log.Printf("[redis] set %s failed: %v", key, serr)
		}
	}
	return series, nil
}
