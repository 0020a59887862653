package data

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/totem-api/internal/testutil"
)

func TestRedisCacheRepo_ListIDLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)
	t.Cleanup(func() { _ = client.Close() })

	prefix := "test:" + uuid.NewString() + ":"
	repo := NewRedisCacheRepo(client, prefix)
	ctx := context.Background()

	got, err := repo.Get(ctx, "listid:Accessi")
	require.NoError(t, err)
	assert.Nil(t, got, "a miss is not an error")

	require.NoError(t, repo.Set(ctx, "listid:Accessi", []byte("b1f0c3a2"), 6*time.Hour))
	got, err = repo.Get(ctx, "listid:Accessi")
	require.NoError(t, err)
	assert.Equal(t, "b1f0c3a2", string(got))

	ttl := client.TTL(ctx, prefix+"listid:Accessi").Val()
	assert.Greater(t, ttl, 5*time.Hour)

	deleted, err := repo.Delete(ctx, "listid:Accessi")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.Delete(ctx, "listid:Accessi")
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, repo.Health(ctx))
}

func TestRedisCacheRepo_RejectsEmptyKey(t *testing.T) {
	repo := NewRedisCacheRepo(nil, "totem:")
	ctx := context.Background()

	calls := map[string]func() error{
		"set": func() error { return repo.Set(ctx, "", []byte("x"), time.Minute) },
		"get": func() error { _, err := repo.Get(ctx, ""); return err },
		"del": func() error { _, err := repo.Delete(ctx, ""); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.EqualError(t, call(), "key cannot be empty")
		})
	}
}
