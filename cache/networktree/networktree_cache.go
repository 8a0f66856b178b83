package networktree

import (
	"sync"

	"gitlab.com/vendalink-commerce/affiliate_api/model"
)

type Cache struct {
	chains map[uint64][]model.ChainEntry
	lock   *sync.RWMutex
}

var cache *Cache

func init() {
	cache = &Cache{
		chains: make(map[uint64][]model.ChainEntry),
		lock:   &sync.RWMutex{},
	}
}

// GetChain returns the cached ancestor chain for the affiliate, if present
func GetChain(affiliateID uint64) ([]model.ChainEntry, bool) {
	cache.lock.RLock()
	defer cache.lock.RUnlock()
	chain, ok := cache.chains[affiliateID]
	if !ok {
		return nil, false
	}
	copied := make([]model.ChainEntry, len(chain))
	copy(copied, chain)
	return copied, true
}

// SetChain stores the resolved ancestor chain for the affiliate
func SetChain(affiliateID uint64, chain []model.ChainEntry) {
	copied := make([]model.ChainEntry, len(chain))
	copy(copied, chain)
	cache.lock.Lock()
	cache.chains[affiliateID] = copied
	cache.lock.Unlock()
}

// Invalidate drops the cached chains of the given affiliates. Used after a
// projection rebuild so readers fall through to the fresh edges.
func Invalidate(affiliateIDs ...uint64) {
	cache.lock.Lock()
	for _, id := range affiliateIDs {
		delete(cache.chains, id)
	}
	cache.lock.Unlock()
}

// Flush drops every cached chain
func Flush() {
	cache.lock.Lock()
	cache.chains = make(map[uint64][]model.ChainEntry)
	cache.lock.Unlock()
}
