package memory

import (
	"context"
	"time"

	"github.com/aretw0/mercato/pkg/domain"
	"github.com/patrickmn/go-cache"
)

// DefaultSessionTTL is how long an idle session survives in the CacheStore.
const DefaultSessionTTL = 24 * time.Hour

// CacheStore implements ports.SessionStore on an expiring in-process cache.
// Sessions that see no traffic for the TTL are evicted and the customer starts fresh.
type CacheStore struct {
	cache *cache.Cache
}

// NewCacheStore creates a store whose entries expire after ttl of inactivity.
func NewCacheStore(ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cleanup := ttl / 6
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &CacheStore{cache: cache.New(ttl, cleanup)}
}

func (s *CacheStore) Save(ctx context.Context, sess *domain.Session) error {
	copied, err := sess.Clone()
	if err != nil {
		return err
	}
	s.cache.Set(sess.ID, copied, cache.DefaultExpiration)
	return nil
}

func (s *CacheStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	x, found := s.cache.Get(sessionID)
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	return x.(*domain.Session).Clone()
}

func (s *CacheStore) Delete(ctx context.Context, sessionID string) error {
	s.cache.Delete(sessionID)
	return nil
}

func (s *CacheStore) List(ctx context.Context) ([]string, error) {
	items := s.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	return ids, nil
}
