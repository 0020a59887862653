// Package redis provides Redis-backed adapters for sessions, delegated token
// sets and pending silent redirects.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	apperrors "github.com/target/totem-api/internal/errors"
)

// Default key prefixes. Bootstrap prepends the configured namespace.
const (
	SessionPrefix  = "session:"
	TokenPrefix    = "token:"
	RedirectPrefix = "redirect:"
)

// ErrNotFound is returned when a key is missing or expired.
var ErrNotFound error = apperrors.NotFound("redis: key not found")

// jsonStore stores JSON documents under a fixed key prefix.
type jsonStore struct {
	client redis.UniversalClient
	prefix string
}

func (s jsonStore) key(id string) string { return s.prefix + id }

func (s jsonStore) put(ctx context.Context, id string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.prefix, err)
	}
	if err := s.client.Set(ctx, s.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s jsonStore) get(ctx context.Context, id string, dst any) error {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	return s.decode(data, err, dst)
}

func (s jsonStore) take(ctx context.Context, id string, dst any) error {
	data, err := s.client.GetDel(ctx, s.key(id)).Bytes()
	return s.decode(data, err, dst)
}

func (s jsonStore) decode(data []byte, err error, dst any) error {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w", s.prefix, err)
	}
	return nil
}

func (s jsonStore) del(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(id)).Err()
}
