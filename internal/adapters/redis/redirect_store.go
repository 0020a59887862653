package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/totem-api/internal/domain/auth"
)

// DefaultRedirectTTL bounds how long a prepared prompt=none redirect waits.
const DefaultRedirectTTL = 10 * time.Minute

// RedirectStore parks one pending redirect per account until a request from
// that account's browser takes it.
type RedirectStore struct {
	store jsonStore
}

// NewRedirectStore creates a redirect store. An empty prefix uses RedirectPrefix.
func NewRedirectStore(client redis.UniversalClient, prefix string) *RedirectStore {
	if prefix == "" {
		prefix = RedirectPrefix
	}
	return &RedirectStore{store: jsonStore{client: client, prefix: prefix}}
}

// Put replaces any redirect already waiting for the account.
func (s *RedirectStore) Put(ctx context.Context, accountID string, pending domainauth.PendingRedirect, ttl time.Duration) error {
	if accountID == "" {
		return errors.New("account ID cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultRedirectTTL
	}
	return s.store.put(ctx, accountID, pending, ttl)
}

// Take atomically reads and deletes the account's pending redirect.
func (s *RedirectStore) Take(ctx context.Context, accountID string) (domainauth.PendingRedirect, bool, error) {
	if accountID == "" {
		return domainauth.PendingRedirect{}, false, nil
	}
	var pending domainauth.PendingRedirect
	err := s.store.take(ctx, accountID, &pending)
	switch {
	case errors.Is(err, ErrNotFound):
		return domainauth.PendingRedirect{}, false, nil
	case err != nil:
		return domainauth.PendingRedirect{}, false, err
	}
	return pending, true, nil
}
