package devauth

// Package devauth provides a config-driven AuthProvider and silent token
// source for running the kiosk backend without Entra.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	domainauth "github.com/target/totem-api/internal/domain/auth"
	"github.com/target/totem-api/internal/ports"
)

const devTokenLifetime = time.Hour

// Config controls the dev auth provider behavior.
// All fields are required except Groups, which may be empty.
type Config struct {
	UserID          string
	Email           string
	Groups          []string
	SessionDuration time.Duration // default 8h when zero
}

// Provider short-circuits the OAuth flow by redirecting straight back to our
// own callback. Exchange ignores the code and returns the configured identity.
// AcquireTokenSilent hands out synthetic tokens so the renewal loop runs too.
type Provider struct {
	identity        domainauth.Identity
	sessionDuration time.Duration

	mu     sync.Mutex
	tokens map[string]domainauth.TokenSet
	now    func() time.Time
}

var (
	_ ports.AuthProvider        = (*Provider)(nil)
	_ ports.SilentTokenAcquirer = (*Provider)(nil)
)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID: cfg.UserID,
			Email:  cfg.Email,
			Groups: append([]string(nil), cfg.Groups...),
			Account: domainauth.Account{
				ID:       "dev." + cfg.UserID,
				Username: cfg.Email,
				Name:     cfg.UserID,
			},
		},
		sessionDuration: dur,
		tokens:          make(map[string]domainauth.TokenSet),
		now:             time.Now,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	if in.Prompt != "" {
		q.Set("prompt", in.Prompt)
	}
	return "/auth/callback?" + q.Encode(), state, nonce, nil
}

// Exchange returns the dev identity with a fresh synthetic token set.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	now := p.now()
	ident := p.identity
	ident.ExpiresAt = now.Add(p.sessionDuration)

	ts, err := p.issue(now)
	if err != nil {
		return domainauth.Identity{}, err
	}
	p.mu.Lock()
	p.tokens[ident.Account.ID] = ts
	p.mu.Unlock()

	ident.Tokens = ts
	return ident, nil
}

// AcquireTokenSilent returns the current synthetic token, minting a new one
// when forced or expired. Unknown accounts need a (dev) sign-in first.
func (p *Provider) AcquireTokenSilent(_ context.Context, req domainauth.SilentRequest) (*domainauth.TokenResult, error) {
	if req.Account.IsZero() {
		return nil, domainauth.ErrNoAccount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	ts, ok := p.tokens[req.Account.ID]
	if !ok {
		return nil, fmt.Errorf("dev auth: account %s not signed in: %w", req.Account.ID, domainauth.ErrInteractionRequired)
	}
	if req.ForceRefresh || !ts.Valid(now, 0) {
		fresh, err := p.issue(now)
		if err != nil {
			return nil, err
		}
		ts = fresh
		p.tokens[req.Account.ID] = ts
	}
	return &domainauth.TokenResult{
		Account:     req.Account,
		AccessToken: ts.AccessToken,
		Scopes:      ts.Scopes,
		ExpiresOn:   ts.ExpiresOn,
	}, nil
}

func (p *Provider) issue(now time.Time) (domainauth.TokenSet, error) {
	tok, err := randomString(32)
	if err != nil {
		return domainauth.TokenSet{}, fmt.Errorf("generate dev token: %w", err)
	}
	return domainauth.TokenSet{
		AccessToken:  "dev-" + tok,
		RefreshToken: "dev-refresh",
		Scopes:       []string{"User.Read"},
		ExpiresOn:    now.Add(devTokenLifetime),
	}, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
