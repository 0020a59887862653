package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/target/totem-api/internal/domain/auth"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider  = (*MockAuthProvider)(nil)
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.RoleMapper    = (*StaticRoleMapper)(nil)
	_ ports.TokenCache    = (*MemoryTokenCache)(nil)
	_ ports.RedirectStore = (*MemoryRedirectStore)(nil)
)

// ErrNotFound is returned by the memory stores when an entry is absent.
var ErrNotFound error = apperrors.NotFound("not found")

// MockAuthProvider simulates Entra for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
	// Begins records every BeginInput seen, in order.
	Begins []ports.BeginInput
}

// NewMockAuthProvider creates a MockAuthProvider with a signed-in kiosk operator.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/authorize",
		DefaultUser: DefaultIdentity(),
	}
}

// DefaultIdentity is the operator returned by MockAuthProvider.Exchange.
func DefaultIdentity() domainauth.Identity {
	return domainauth.Identity{
		UserID:    "oid-kiosk",
		FirstName: "Kiosk",
		LastName:  "Operator",
		Email:     "kiosk@contoso.example",
		Groups:    []string{"users"},
		Account: domainauth.Account{
			ID:       "oid-kiosk.tid-1",
			Username: "kiosk@contoso.example",
			Name:     "Kiosk Operator",
			TenantID: "tid-1",
		},
		Tokens: domainauth.TokenSet{
			AccessToken:  "mock-access-token",
			RefreshToken: "mock-refresh-token",
			Scopes:       []string{"User.Read"},
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	m.mu.Lock()
	m.Begins = append(m.Begins, in)
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/authorize"
	}
	if in.Prompt != "" {
		authURL += "?prompt=" + in.Prompt
	}
	return authURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	user := m.DefaultUser
	if user.UserID == "" {
		user = DefaultIdentity()
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	user.Tokens.ExpiresOn = user.ExpiresAt
	return user, nil
}

// BeginCalls returns how many times Begin was called.
func (m *MockAuthProvider) BeginCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// MemoryTokenCache keeps token sets in memory.
type MemoryTokenCache struct {
	mu     sync.RWMutex
	tokens map[string]domainauth.TokenSet
}

// NewMemoryTokenCache creates an empty token cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{tokens: make(map[string]domainauth.TokenSet)}
}

func (c *MemoryTokenCache) Load(_ context.Context, accountID string) (domainauth.TokenSet, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ts, ok := c.tokens[accountID]
	if !ok {
		return domainauth.TokenSet{}, ErrNotFound
	}
	return ts, nil
}

func (c *MemoryTokenCache) Store(_ context.Context, accountID string, tokens domainauth.TokenSet) error {
	if accountID == "" {
		return errors.New("account ID cannot be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[accountID] = tokens
	return nil
}

func (c *MemoryTokenCache) Remove(_ context.Context, accountID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, accountID)
	return nil
}

// MemoryRedirectStore keeps pending redirects in memory; TTLs are ignored.
type MemoryRedirectStore struct {
	mu      sync.Mutex
	pending map[string]domainauth.PendingRedirect
	puts    int
}

// NewMemoryRedirectStore creates an empty redirect store.
func NewMemoryRedirectStore() *MemoryRedirectStore {
	return &MemoryRedirectStore{pending: make(map[string]domainauth.PendingRedirect)}
}

func (s *MemoryRedirectStore) Put(_ context.Context, accountID string, p domainauth.PendingRedirect, _ time.Duration) error {
	if accountID == "" {
		return errors.New("account ID cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[accountID] = p
	s.puts++
	return nil
}

func (s *MemoryRedirectStore) Take(_ context.Context, accountID string) (domainauth.PendingRedirect, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[accountID]
	delete(s.pending, accountID)
	return p, ok, nil
}

// Puts returns how many redirects were stored.
func (s *MemoryRedirectStore) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.UserGroup != "" && g == m.UserGroup {
			return domainauth.RoleUser
		}
	}
	return domainauth.RoleGuest
}
