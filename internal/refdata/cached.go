package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rshade/carbonfocus/internal/cbam"
	"github.com/rshade/carbonfocus/internal/emission"
	"github.com/rshade/carbonfocus/internal/engine/cache"
	"github.com/rshade/carbonfocus/internal/logging"
)

// Record kinds used in cache keys and entries.
const (
	kindFactor     = "factor"
	kindFuelPrice  = "fuel_price"
	kindDefaultSEE = "default_see"
)

// Cached wraps a Source with an in-memory tier and an optional on-disk tier.
// Only successful lookups are cached; not-found and errors always reach the
// wrapped source on the next call.
type Cached struct {
	next   Source
	memory *gocache.Cache
	disk   *cache.FileStore
}

// NewCached returns a caching Source. disk may be nil or disabled.
func NewCached(next Source, disk *cache.FileStore, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &Cached{
		next:   next,
		memory: gocache.New(ttl, 2*ttl),
		disk:   disk,
	}
}

// Factor implements emission.FactorSource.
func (c *Cached) Factor(ctx context.Context, activityKey, region string) (emission.EmissionFactor, error) {
	return lookup(ctx, c, kindFactor, []string{activityKey, region}, func() (emission.EmissionFactor, error) {
		return c.next.Factor(ctx, activityKey, region)
	})
}

// FuelPrice implements emission.PriceSource. Cached prices are re-checked
// for validity by the caller.
func (c *Cached) FuelPrice(ctx context.Context, fuelType, currency, region string) (emission.FuelPrice, error) {
	return lookup(ctx, c, kindFuelPrice, []string{fuelType, currency, region}, func() (emission.FuelPrice, error) {
		return c.next.FuelPrice(ctx, fuelType, currency, region)
	})
}

// DefaultSEE implements cbam.DefaultSource.
func (c *Cached) DefaultSEE(ctx context.Context, cnCode, country string) (cbam.DefaultSEE, error) {
	return lookup(ctx, c, kindDefaultSEE, []string{cbam.NormalizeCN(cnCode), country}, func() (cbam.DefaultSEE, error) {
		return c.next.DefaultSEE(ctx, cnCode, country)
	})
}

// Flush empties the in-memory tier.
func (c *Cached) Flush() {
	c.memory.Flush()
}

func lookup[T any](ctx context.Context, c *Cached, kind string, params []string, fetch func() (T, error)) (T, error) {
	log := logging.FromContext(ctx)
	key := cache.Key(kind, params...)

	if v, ok := c.memory.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	if c.disk != nil && c.disk.Enabled() {
		entry, err := c.disk.Get(key)
		switch {
		case err == nil:
			var v T
			if jsonErr := json.Unmarshal(entry.Data, &v); jsonErr == nil {
				c.memory.Set(key, v, entry.Remaining())
				return v, nil
			}
		case !errors.Is(err, cache.ErrNotFound) && !errors.Is(err, cache.ErrExpired):
			log.Debug().Ctx(ctx).Str("component", "refdata").Err(err).Msg("disk cache read failed")
		}
	}

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	c.memory.Set(key, v, gocache.DefaultExpiration)
	if c.disk != nil && c.disk.Enabled() {
		if setErr := c.disk.Set(key, kind, v); setErr != nil {
			log.Debug().Ctx(ctx).Str("component", "refdata").Err(setErr).Msg("disk cache write failed")
		}
	}
	return v, nil
}
