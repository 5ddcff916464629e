package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/localbasket/localbasket-backend/pkg/redis"

	"github.com/localbasket/localbasket-backend/pkg/geo"
	"github.com/localbasket/localbasket-backend/pkg/logger"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// nearbyCache keeps recent proximity results in Redis for a short TTL.
// Every failure degrades to a direct query; the cache is never load-bearing.
type nearbyCache struct {
	store cacheStore
	ttl   time.Duration
	logg  *logger.Logger
}

func newNearbyCache(store cacheStore, ttl time.Duration, logg *logger.Logger) *nearbyCache {
	if store == nil || ttl <= 0 {
		return nil
	}
	return &nearbyCache{store: store, ttl: ttl, logg: logg}
}

// key rounds the origin to ~11m of precision so nearby repeat queries from
// the same map view share an entry.
func (c *nearbyCache) key(origin geo.StoragePoint, radiusKm float64, params NearbyParams) string {
	return c.store.CacheKey(
		"nearby",
		fmt.Sprintf("%.4f:%.4f", origin.Lng, origin.Lat),
		fmt.Sprintf("r%.1f", radiusKm),
		fmt.Sprintf("c%s", params.Category),
		fmt.Sprintf("b%s", params.Brand),
		fmt.Sprintf("l%d", params.Limit),
	)
}

func (c *nearbyCache) get(ctx context.Context, origin geo.StoragePoint, radiusKm float64, params NearbyParams) ([]NearbyProduct, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.store.Get(ctx, c.key(origin, radiusKm, params))
	if err != nil {
		if !errors.Is(err, pkgredis.Nil) && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "nearby.cache.read_failed")
		}
		return nil, false
	}

	var cached []NearbyProduct
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, false
	}
	return cached, true
}

func (c *nearbyCache) put(ctx context.Context, origin geo.StoragePoint, radiusKm float64, params NearbyParams, results []NearbyProduct) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, c.key(origin, radiusKm, params), string(payload), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "nearby.cache.write_failed")
	}
}
