package ports

// Package ports defines interfaces (hexagonal ports) for auth and token behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/target/totem-api/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
	// Prompt overrides the provider's default prompt ("none" for silent redirects).
	Prompt string
	// LoginHint pre-selects the account at the IdP.
	LoginHint string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// SilentTokenAcquirer obtains a token for an account without user interaction.
// Implementations report ErrInteractionRequired or ErrMonitorWindowTimeout
// (wrapped) when only a redirect can recover.
type SilentTokenAcquirer interface {
	AcquireTokenSilent(ctx context.Context, req domainauth.SilentRequest) (*domainauth.TokenResult, error)
}

// LoginRedirector starts a full-page, non-interactive reacquisition. It does
// not return a token; the result arrives later through the login callback.
type LoginRedirector interface {
	LoginRedirect(ctx context.Context, req domainauth.RedirectRequest) error
}

// TokenProvider is everything the renewal loop needs from the identity side.
type TokenProvider interface {
	SilentTokenAcquirer
	LoginRedirector
}

// TokenCache stores the delegated token set of each account.
type TokenCache interface {
	Load(ctx context.Context, accountID string) (domainauth.TokenSet, error)
	Store(ctx context.Context, accountID string, tokens domainauth.TokenSet) error
	Remove(ctx context.Context, accountID string) error
}

// RedirectStore holds prepared prompt=none redirects until the account's
// browser consumes them.
type RedirectStore interface {
	Put(ctx context.Context, accountID string, pending domainauth.PendingRedirect, ttl time.Duration) error
	// Take returns and deletes the pending redirect. ok is false when none is waiting.
	Take(ctx context.Context, accountID string) (pending domainauth.PendingRedirect, ok bool, err error)
}

// AccessTokenSource yields a bearer token for outbound Graph calls.
type AccessTokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}
