package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/totem-api/internal/domain/auth"
	"github.com/target/totem-api/internal/testutil"
)

func TestRedirectStore_TakeIsOneShot(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewRedirectStore(client, "")
	ctx := context.Background()

	pending := domainauth.PendingRedirect{
		AuthURL:   "https://login.example/authorize?prompt=none",
		State:     "s1",
		Nonce:     "n1",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, "acc-1", pending, time.Minute))

	got, ok, err := store.Take(ctx, "acc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pending.AuthURL, got.AuthURL)
	assert.Equal(t, pending.State, got.State)

	_, ok, err = store.Take(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedirectStore_PutReplacesAndExpires(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	store := NewRedirectStore(client, "rd:")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "acc-1", domainauth.PendingRedirect{State: "old"}, time.Minute))
	require.NoError(t, store.Put(ctx, "acc-1", domainauth.PendingRedirect{State: "new"}, 0))

	ttl := client.TTL(ctx, "rd:acc-1").Val()
	assert.Greater(t, ttl, 9*time.Minute)

	got, ok, err := store.Take(ctx, "acc-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got.State)

	_, ok, err = store.Take(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	require.Error(t, store.Put(ctx, "", domainauth.PendingRedirect{}, time.Minute))
}
