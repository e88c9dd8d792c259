package db

import (
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Storing cache keys in concurrent data structures to allow for clearing
// all caches of a certain type. Campaign lists change on every Meta sync
// and on automation runs, deal lists on HubSpot syncs and rule actions.
var (
	Cache             *ristretto.Cache
	CampaignCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	DealCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	RuleCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Campaign Cache Functions
func SetCampaignCache(cacheKey string, value interface{}) {
	CampaignCacheKeys.Lock()
	CampaignCacheKeys.m[cacheKey] = struct{}{}
	CampaignCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func ClearAllCampaignCaches() {
	CampaignCacheKeys.Lock()
	for key := range CampaignCacheKeys.m {
		Cache.Del(key)
	}
	CampaignCacheKeys.m = make(map[string]struct{})
	CampaignCacheKeys.Unlock()
}

// Deal Cache Functions
func SetDealCache(cacheKey string, value interface{}) {
	DealCacheKeys.Lock()
	DealCacheKeys.m[cacheKey] = struct{}{}
	DealCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func ClearAllDealCaches() {
	DealCacheKeys.Lock()
	for key := range DealCacheKeys.m {
		Cache.Del(key)
	}
	DealCacheKeys.m = make(map[string]struct{})
	DealCacheKeys.Unlock()
}

// Rule Cache Functions
func SetRuleCache(cacheKey string, value interface{}) {
	RuleCacheKeys.Lock()
	RuleCacheKeys.m[cacheKey] = struct{}{}
	RuleCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func ClearAllRuleCaches() {
	RuleCacheKeys.Lock()
	for key := range RuleCacheKeys.m {
		Cache.Del(key)
	}
	RuleCacheKeys.m = make(map[string]struct{})
	RuleCacheKeys.Unlock()
}
