package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/totem-api/internal/domain/auth"
	"github.com/target/totem-api/internal/ports"
)

const (
	// DefaultSessionTTL bounds an operator session. Graph tokens are renewed
	// independently, so sessions outlive the one-hour access token.
	DefaultSessionTTL = 12 * time.Hour

	// DefaultRedirectTTL is how long a prepared prompt=none redirect waits for pickup.
	DefaultRedirectTTL = 10 * time.Minute
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper

	// Tokens receives the token set obtained at login. Optional.
	Tokens ports.TokenCache
	// Accounts is the registry of signed-in accounts. Optional.
	Accounts *AccountRegistry
	// Redirects holds prepared prompt=none redirects. Required for LoginRedirect.
	Redirects ports.RedirectStore

	// RedirectURL is the callback used for redirect reacquisition.
	RedirectURL string
	SessionTTL  time.Duration
	RedirectTTL time.Duration
	Now         func() time.Time
	Logger      *slog.Logger
}

// AuthService orchestrates authentication flows by coordinating provider, role mapping, and session persistence.
type AuthService struct {
	provider  ports.AuthProvider
	sessions  ports.SessionStore
	roles     ports.RoleMapper
	tokens    ports.TokenCache
	accounts  *AccountRegistry
	redirects ports.RedirectStore

	redirectURL string
	sessionTTL  time.Duration
	redirectTTL time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

var _ ports.LoginRedirector = (*AuthService)(nil)

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	s := &AuthService{
		provider:    opts.Provider,
		sessions:    opts.Sessions,
		roles:       opts.Roles,
		tokens:      opts.Tokens,
		accounts:    opts.Accounts,
		redirects:   opts.Redirects,
		redirectURL: opts.RedirectURL,
		sessionTTL:  opts.SessionTTL,
		redirectTTL: opts.RedirectTTL,
		now:         opts.Now,
		logger:      opts.Logger,
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = DefaultSessionTTL
	}
	if s.redirectTTL <= 0 {
		s.redirectTTL = DefaultRedirectTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	input := ports.BeginInput{RedirectURL: redirectURL}
	authURL, state, nonce, err := s.provider.Begin(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin completes an authentication flow by exchanging the code for an identity,
// caching the account's tokens, mapping roles, and persisting a session.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	exchangeInput := ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	}
	identity, err := s.provider.Exchange(ctx, exchangeInput)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	acc := identity.Account
	if !acc.IsZero() {
		if s.tokens != nil && identity.Tokens.AccessToken != "" {
			if storeErr := s.tokens.Store(ctx, acc.ID, identity.Tokens); storeErr != nil {
				return nil, fmt.Errorf("store tokens: %w", storeErr)
			}
		}
		if s.accounts != nil && s.accounts.Add(acc) {
			s.logger.InfoContext(ctx, "account signed in", "account", acc.ID, "username", acc.Username)
		}
	}

	role := s.roles.Map(identity.Groups)

	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    identity.UserID,
		AccountID: acc.ID,
		Username:  acc.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		Email:     identity.Email,
		Role:      role,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &CompleteLoginResult{
		Session: session,
	}, nil
}

// GetSession retrieves a session by ID. A live session re-registers its
// account so token renewal resumes after a restart.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	if s.accounts != nil && session.AccountID != "" {
		if _, known := s.accounts.Get(session.AccountID); !known {
			s.accounts.Add(session.Account())
			s.logger.InfoContext(ctx, "account restored from session", "account", session.AccountID)
		}
	}

	return &session, nil
}

// Logout removes a session and signs its account out of token renewal.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	var accountID string
	if session, err := s.sessions.Get(ctx, sessionID); err == nil {
		accountID = session.AccountID
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if accountID == "" {
		return nil
	}
	if s.accounts != nil {
		s.accounts.Remove(accountID)
	}
	if s.tokens != nil {
		if err := s.tokens.Remove(ctx, accountID); err != nil {
			return fmt.Errorf("remove tokens: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "account signed out", "account", accountID)
	return nil
}

// LoginRedirect prepares a non-interactive authorization request for the
// account and parks it until the account's browser picks it up. The new token
// set arrives through the normal login callback.
func (s *AuthService) LoginRedirect(ctx context.Context, req domainauth.RedirectRequest) error {
	if req.Account.IsZero() {
		return domainauth.ErrNoAccount
	}
	if s.redirects == nil {
		return errors.New("redirect store is not configured")
	}
	if s.redirectURL == "" {
		return errors.New("redirect URL is required")
	}

	prompt := req.Prompt
	if prompt == "" {
		prompt = domainauth.PromptNone
	}
	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{
		RedirectURL: s.redirectURL,
		Prompt:      prompt,
		LoginHint:   req.Account.Username,
	})
	if err != nil {
		return fmt.Errorf("begin redirect flow: %w", err)
	}

	pending := domainauth.PendingRedirect{
		AuthURL:   authURL,
		State:     state,
		Nonce:     nonce,
		CreatedAt: s.now().UTC(),
	}
	if err := s.redirects.Put(ctx, req.Account.ID, pending, s.redirectTTL); err != nil {
		return fmt.Errorf("store pending redirect: %w", err)
	}

	s.logger.InfoContext(ctx, "redirect reacquisition prepared",
		"account", req.Account.ID,
		"prompt", prompt,
	)
	return nil
}

// TakePendingRedirect consumes the redirect waiting for an account, if any.
func (s *AuthService) TakePendingRedirect(ctx context.Context, accountID string) (*domainauth.PendingRedirect, error) {
	if s.redirects == nil || accountID == "" {
		return nil, nil
	}
	pending, ok, err := s.redirects.Take(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("take pending redirect: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &pending, nil
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	// Use UUID for session ID - it's URL-safe and has good entropy
	id := uuid.New()
	return id.String()
}
