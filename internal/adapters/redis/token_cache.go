package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/totem-api/internal/domain/auth"
)

// DefaultTokenTTL matches the Entra refresh token's inactivity lifetime.
const DefaultTokenTTL = 90 * 24 * time.Hour

// TokenCache stores each account's delegated token set. Entries outlive the
// access token so the refresh token remains available to silent renewal.
type TokenCache struct {
	store jsonStore
	ttl   time.Duration
}

// NewTokenCache creates a token cache. A non-positive ttl uses DefaultTokenTTL.
func NewTokenCache(client redis.UniversalClient, prefix string, ttl time.Duration) *TokenCache {
	if prefix == "" {
		prefix = TokenPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCache{store: jsonStore{client: client, prefix: prefix}, ttl: ttl}
}

func (c *TokenCache) Load(ctx context.Context, accountID string) (domainauth.TokenSet, error) {
	if accountID == "" {
		return domainauth.TokenSet{}, ErrNotFound
	}
	var ts domainauth.TokenSet
	if err := c.store.get(ctx, accountID, &ts); err != nil {
		return domainauth.TokenSet{}, err
	}
	return ts, nil
}

func (c *TokenCache) Store(ctx context.Context, accountID string, tokens domainauth.TokenSet) error {
	if accountID == "" {
		return errors.New("account ID cannot be empty")
	}
	return c.store.put(ctx, accountID, tokens, c.ttl)
}

func (c *TokenCache) Remove(ctx context.Context, accountID string) error {
	return c.store.del(ctx, accountID)
}
