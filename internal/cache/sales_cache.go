package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Hafiizherdian/dashboard2y2/internal/config"
	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

const (
	defaultCacheTTL  = time.Minute
	redisDialTimeout = 5 * time.Second
)

// SalesCache caches the read-heavy dashboard and stats responses. Every
// committed or deleted batch must be followed by InvalidateAll.
type SalesCache interface {
	GetDashboard(ctx context.Context, filter domain.SalesFilter) (*domain.SalesDashboard, bool, error)
	SetDashboard(ctx context.Context, filter domain.SalesFilter, dashboard *domain.SalesDashboard) error
	GetStats(ctx context.Context) (*domain.Stats, bool, error)
	SetStats(ctx context.Context, stats *domain.Stats) error
	InvalidateAll(ctx context.Context) error
}

type redisSalesCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSalesCache struct{}

// NewSalesCache returns a redis-backed cache, or a no-op one when caching is
// disabled.
func NewSalesCache(cfg config.CacheConfig) (SalesCache, error) {
	if !cfg.Enabled {
		return NewNoopSalesCache(), nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("sales cache at %s unreachable: %w", opts.Addr, err)
	}

	return NewRedisSalesCache(client, time.Duration(cfg.DashboardTTLSeconds)*time.Second), nil
}

// redisOptions prefers REDIS_URL and otherwise falls back to the discrete
// host settings, defaulting to a local server.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func NewRedisSalesCache(client *redis.Client, ttl time.Duration) SalesCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisSalesCache{client: client, ttl: ttl}
}

func NewNoopSalesCache() SalesCache {
	return &noopSalesCache{}
}

func (c *redisSalesCache) GetDashboard(ctx context.Context, filter domain.SalesFilter) (*domain.SalesDashboard, bool, error) {
	var dashboard domain.SalesDashboard
	ok, err := c.get(ctx, buildDashboardKey(filter), &dashboard)
	if !ok || err != nil {
		return nil, false, err
	}
	return &dashboard, true, nil
}

func (c *redisSalesCache) SetDashboard(ctx context.Context, filter domain.SalesFilter, dashboard *domain.SalesDashboard) error {
	return c.set(ctx, buildDashboardKey(filter), dashboard)
}

func (c *redisSalesCache) GetStats(ctx context.Context) (*domain.Stats, bool, error) {
	var stats domain.Stats
	ok, err := c.get(ctx, statsKey, &stats)
	if !ok || err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

func (c *redisSalesCache) SetStats(ctx context.Context, stats *domain.Stats) error {
	return c.set(ctx, statsKey, stats)
}

func (c *redisSalesCache) InvalidateAll(ctx context.Context) error {
	removed, err := purgeSalesKeys(ctx, c.client)
	if err != nil {
		return err
	}
	log.Debug().Int64("keys", removed).Msg("Sales cache invalidated")
	return nil
}

func (c *redisSalesCache) get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

func (c *redisSalesCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopSalesCache) GetDashboard(ctx context.Context, filter domain.SalesFilter) (*domain.SalesDashboard, bool, error) {
	return nil, false, nil
}

func (n *noopSalesCache) SetDashboard(ctx context.Context, filter domain.SalesFilter, dashboard *domain.SalesDashboard) error {
	return nil
}

func (n *noopSalesCache) GetStats(ctx context.Context) (*domain.Stats, bool, error) {
	return nil, false, nil
}

func (n *noopSalesCache) SetStats(ctx context.Context, stats *domain.Stats) error {
	return nil
}

func (n *noopSalesCache) InvalidateAll(ctx context.Context) error {
	return nil
}
