package credits

import (
	"context"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore is an in-process Store bounded by capacity. When full, the
// least recently stored entry is evicted.
type MemoryStore struct {
	cache *ttlcache.Cache[string, Entry]
}

// NewMemoryStore creates a MemoryStore and starts its expiry loop.
// Call Close to stop it.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = 1
	}
	cache := ttlcache.New(
		ttlcache.WithTTL[string, Entry](TTL),
		ttlcache.WithCapacity[string, Entry](uint64(capacity)),
		ttlcache.WithDisableTouchOnHit[string, Entry](),
	)
	go cache.Start()
	return &MemoryStore{cache: cache}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, key string) (*Entry, bool, error) {
	item := s.cache.Get(key)
	if item == nil {
		return nil, false, nil
	}
	entry := item.Value()
	return &entry, true, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, key string, entry Entry) error {
	s.cache.Set(key, entry, ttlcache.DefaultTTL)
	return nil
}

// Len reports the number of entries held.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

// Close stops the expiry loop.
func (s *MemoryStore) Close() {
	s.cache.Stop()
}
