package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheStore keeps conversation memory in-process on a TTL cache. Expired
// users are purged by the cache's sweep interval; touching a user's history
// resets its TTL, so an active conversation never expires mid-session.
type CacheStore struct {
	cache *cache.Cache
	mu    sync.Mutex
}

// NewCacheStore creates a store whose entries expire ttl after last access
// and are swept every sweepInterval.
func NewCacheStore(ttl, sweepInterval time.Duration) *CacheStore {
	return &CacheStore{
		cache: cache.New(ttl, sweepInterval),
	}
}

func (s *CacheStore) Get(ctx context.Context, userID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.turns(userID)
	if len(turns) > 0 {
		// Refresh TTL on access.
		s.cache.Set(userID, turns, cache.DefaultExpiration)
	}

	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *CacheStore) Append(ctx context.Context, userID string, turns ...Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.turns(userID), turns...)
	s.cache.Set(userID, history, cache.DefaultExpiration)
	return nil
}

func (s *CacheStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Delete(userID)
	return nil
}

func (s *CacheStore) turns(userID string) []Turn {
	if x, found := s.cache.Get(userID); found {
		return x.([]Turn)
	}
	return nil
}
