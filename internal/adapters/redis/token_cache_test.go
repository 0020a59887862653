package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/totem-api/internal/domain/auth"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/testutil"
)

func TestTokenCache_StoreLoadRemove(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	cache := NewTokenCache(client, "", 0)
	ctx := context.Background()

	ts := domainauth.TokenSet{
		AccessToken:  "at",
		RefreshToken: "rt",
		Scopes:       []string{"User.Read"},
		ExpiresOn:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	require.NoError(t, cache.Store(ctx, "acc-1", ts))

	ttl := client.TTL(ctx, TokenPrefix+"acc-1").Val()
	assert.Greater(t, ttl, 89*24*time.Hour)

	got, err := cache.Load(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, ts.AccessToken, got.AccessToken)
	assert.Equal(t, ts.RefreshToken, got.RefreshToken)
	assert.True(t, ts.ExpiresOn.Equal(got.ExpiresOn))

	require.NoError(t, cache.Remove(ctx, "acc-1"))
	_, err = cache.Load(ctx, "acc-1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTokenCache_Validation(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	cache := NewTokenCache(client, "tok:", time.Minute)
	ctx := context.Background()

	_, err := cache.Load(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)

	err = cache.Store(ctx, "", domainauth.TokenSet{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account ID cannot be empty")

	assert.NoError(t, cache.Remove(ctx, ""))
}
