package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/totem-api/internal/domain/auth"
)

// SessionStore keeps operator sessions. The key TTL follows the session's ExpiresAt.
type SessionStore struct {
	store jsonStore
}

// NewSessionStore creates a session store using the default prefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return NewSessionStoreWithPrefix(client, SessionPrefix)
}

// NewSessionStoreWithPrefix creates a session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{store: jsonStore{client: client, prefix: prefix}}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session is expired")
	}
	return s.store.put(ctx, sess.ID, sess, ttl)
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	var sess domainauth.Session
	if err := s.store.get(ctx, id, &sess); err != nil {
		return domainauth.Session{}, err
	}

	// Redis TTL granularity can outlive ExpiresAt by a little.
	if time.Now().After(sess.ExpiresAt) {
		if err := s.store.del(ctx, id); err != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.store.del(ctx, id)
}
