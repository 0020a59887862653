package auth

// Package auth contains domain-level types for authentication, sessions and
// delegated Graph tokens. It is pure and free of framework/adapter concerns.

import (
	"errors"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Account identifies a signed-in Entra ID account. ID is the home account id
// (object id + tenant id) and is stable across token refreshes.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	TenantID string `json:"tenant_id"`
}

// IsZero reports whether the account is unset.
func (a Account) IsZero() bool { return a.ID == "" }

// TokenSet is the cached delegated token material for one account.
type TokenSet struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	ExpiresOn    time.Time `json:"expires_on"`
}

// Valid reports whether the access token is usable for at least skew more.
func (t TokenSet) Valid(now time.Time, skew time.Duration) bool {
	if t.AccessToken == "" || t.ExpiresOn.IsZero() {
		return false
	}
	return now.Add(skew).Before(t.ExpiresOn)
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (Entra object id or sub)
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token

	Account Account
	Tokens  TokenSet
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AccountID string    `json:"account_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// Account rebuilds the account reference carried by the session.
func (s Session) Account() Account {
	return Account{ID: s.AccountID, Username: s.Username, Name: joinName(s.FirstName, s.LastName)}
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// SilentRequest asks for a token without user interaction.
type SilentRequest struct {
	Account      Account
	Scopes       []string
	ForceRefresh bool
}

// RedirectRequest asks for a full-page reacquisition. Prompt "none" never
// shows UI; the IdP either returns a code or an error to the callback.
type RedirectRequest struct {
	Account Account
	Scopes  []string
	Prompt  string
}

// PromptNone is the non-interactive prompt value used for redirect recovery.
const PromptNone = "none"

// TokenResult is what a successful acquisition hands back to callers.
type TokenResult struct {
	Account     Account
	AccessToken string
	Scopes      []string
	ExpiresOn   time.Time
}

// PendingRedirect is a prepared prompt=none authorization request waiting for
// the account's browser to pick it up.
type PendingRedirect struct {
	AuthURL   string    `json:"auth_url"`
	State     string    `json:"state"`
	Nonce     string    `json:"nonce"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrInteractionRequired means the IdP needs the user before it will issue a token.
	ErrInteractionRequired = errors.New("interaction required")

	// ErrMonitorWindowTimeout means a silent acquisition did not answer within its window.
	ErrMonitorWindowTimeout = errors.New("monitor window timeout")

	// ErrNoAccount means there is no active account to acquire a token for.
	ErrNoAccount = errors.New("no active account")
)

// IsRecoverableByRedirect reports whether a failed silent acquisition should
// be retried with a non-interactive redirect.
func IsRecoverableByRedirect(err error) bool {
	return errors.Is(err, ErrInteractionRequired) || errors.Is(err, ErrMonitorWindowTimeout)
}
