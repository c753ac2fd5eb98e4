package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openrv/pricing-engine/pricing"
	"github.com/openrv/pricing-engine/utils"
	"github.com/redis/go-redis/v9"
)

// LookupCache is a redis read-through layer in front of the collaborator
// clients. It is strictly best-effort: any redis failure falls back to the
// upstream client, so pricing keeps working without the cache.
type LookupCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewLookupCache creates a cache layer. A nil redis client disables caching.
func NewLookupCache(client *redis.Client, prefix string, ttl time.Duration) *LookupCache {
	return &LookupCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *LookupCache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *LookupCache) get(ctx context.Context, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *LookupCache) set(ctx context.Context, key string, value any) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefix+key, raw, c.ttl)
}

// CachedCityDemandSource decorates a CityDemandSource with the lookup cache.
type CachedCityDemandSource struct {
	upstream CityDemandSource
	cache    *LookupCache
}

func NewCachedCityDemandSource(upstream CityDemandSource, cache *LookupCache) CityDemandSource {
	return &CachedCityDemandSource{upstream: upstream, cache: cache}
}

func (s *CachedCityDemandSource) DemandFactor(ctx context.Context, cityID string, date time.Time) (*float64, error) {
	key := fmt.Sprintf("demand:%s:%s", cityID, utils.FormatDate(date))

	var cached float64
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}

	factor, err := s.upstream.DemandFactor(ctx, cityID, date)
	if err != nil {
		return nil, err
	}
	if factor != nil {
		s.cache.set(ctx, key, *factor)
	}
	return factor, nil
}

// CachedHolidayCalendar decorates a HolidayCalendar with the lookup cache.
type CachedHolidayCalendar struct {
	upstream HolidayCalendar
	cache    *LookupCache
}

func NewCachedHolidayCalendar(upstream HolidayCalendar, cache *LookupCache) HolidayCalendar {
	return &CachedHolidayCalendar{upstream: upstream, cache: cache}
}

func (s *CachedHolidayCalendar) HolidaysInRange(ctx context.Context, from, to time.Time) ([]pricing.Holiday, error) {
	key := fmt.Sprintf("holidays:%s:%s", utils.FormatDate(from), utils.FormatDate(to))

	var cached []pricing.Holiday
	if s.cache.get(ctx, key, &cached) {
		return cached, nil
	}

	holidays, err := s.upstream.HolidaysInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if holidays != nil {
		s.cache.set(ctx, key, holidays)
	}
	return holidays, nil
}

// CachedModelCatalog decorates a ModelCatalog with the lookup cache.
type CachedModelCatalog struct {
	upstream ModelCatalog
	cache    *LookupCache
}

func NewCachedModelCatalog(upstream ModelCatalog, cache *LookupCache) ModelCatalog {
	return &CachedModelCatalog{upstream: upstream, cache: cache}
}

func (s *CachedModelCatalog) GetModel(ctx context.Context, modelID string) (*Model, error) {
	key := "model:" + modelID

	var cached Model
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}

	model, err := s.upstream.GetModel(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if model != nil {
		s.cache.set(ctx, key, model)
	}
	return model, nil
}

func (s *CachedModelCatalog) MarketSnapshot(ctx context.Context, modelID string) (*pricing.MarketData, error) {
	key := "market:" + modelID

	var cached pricing.MarketData
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}

	snapshot, err := s.upstream.MarketSnapshot(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		s.cache.set(ctx, key, snapshot)
	}
	return snapshot, nil
}

// CachedStoreDirectory decorates a StoreDirectory with the lookup cache.
type CachedStoreDirectory struct {
	upstream StoreDirectory
	cache    *LookupCache
}

func NewCachedStoreDirectory(upstream StoreDirectory, cache *LookupCache) StoreDirectory {
	return &CachedStoreDirectory{upstream: upstream, cache: cache}
}

func (s *CachedStoreDirectory) GetStore(ctx context.Context, storeID string) (*Store, error) {
	key := "store:" + storeID

	var cached Store
	if s.cache.get(ctx, key, &cached) {
		return &cached, nil
	}

	store, err := s.upstream.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store != nil {
		s.cache.set(ctx, key, store)
	}
	return store, nil
}
