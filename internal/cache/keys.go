package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Hafiizherdian/dashboard2y2/internal/domain"
)

// All sales entries share salesKeyPrefix so a committed or deleted batch can
// drop every cached response with one sweep.
const (
	salesKeyPrefix     = "sales:"
	dashboardKeyPrefix = salesKeyPrefix + "dashboard"
	statsKey           = salesKeyPrefix + "stats"
	scanBatchSize      = 100
)

// buildDashboardKey maps a filter to its cache key. Product matching is case
// insensitive, so the product is lowercased before hashing.
func buildDashboardKey(filter domain.SalesFilter) string {
	var parts []string
	if filter.Year1 > 0 {
		parts = append(parts, "year1="+strconv.Itoa(filter.Year1))
	}
	if filter.Year2 > 0 {
		parts = append(parts, "year2="+strconv.Itoa(filter.Year2))
	}
	if p := strings.TrimSpace(filter.Product); p != "" {
		parts = append(parts, "product="+strings.ToLower(p))
	}
	if a := strings.TrimSpace(filter.Area); a != "" {
		parts = append(parts, "area="+a)
	}
	if c := strings.TrimSpace(filter.City); c != "" {
		parts = append(parts, "city="+c)
	}

	if len(parts) == 0 {
		return dashboardKeyPrefix + ":default"
	}

	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s", dashboardKeyPrefix, hex.EncodeToString(hash[:]))
}

// purgeSalesKeys unlinks every key under salesKeyPrefix and returns how many
// were removed. Keys are collected before any is unlinked so the scan cursor
// never runs over a shrinking keyspace.
func purgeSalesKeys(ctx context.Context, client redis.Cmdable) (int64, error) {
	var keys []string
	iter := client.Scan(ctx, 0, salesKeyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scan sales keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	var unlinks []*redis.IntCmd
	_, err := client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for start := 0; start < len(keys); start += scanBatchSize {
			end := min(start+scanBatchSize, len(keys))
			unlinks = append(unlinks, pipe.Unlink(ctx, keys[start:end]...))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("unlink %d sales keys: %w", len(keys), err)
	}

	var removed int64
	for _, cmd := range unlinks {
		removed += cmd.Val()
	}
	return removed, nil
}
