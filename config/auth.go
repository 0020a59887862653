package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses Entra ID (OIDC) for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

const (
	defaultAuthorityHost = "https://login.microsoftonline.com"
	defaultSessionTTL    = 12 * time.Hour
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// EntraConfig contains the Entra ID app registration used for sign-in and Graph access.
type EntraConfig struct {
	TenantID      string `env:"TENANT_ID"`
	ClientID      string `env:"CLIENT_ID"`
	ClientSecret  string `env:"CLIENT_SECRET"`
	RedirectURL   string `env:"REDIRECT_URL"   envDefault:"http://localhost:8080/auth/callback"`
	Scope         string `env:"SCOPE"          envDefault:"openid profile offline_access User.Read User.ReadBasic.All Sites.ReadWrite.All"`
	AuthorityHost string `env:"AUTHORITY_HOST" envDefault:"https://login.microsoftonline.com"`
}

// DiscoveryURL returns the tenant's v2.0 issuer, from which OIDC discovery is performed.
func (e EntraConfig) DiscoveryURL() string {
	if e.TenantID == "" {
		return ""
	}
	return strings.TrimSuffix(e.AuthorityHost, "/") + "/" + e.TenantID + "/v2.0"
}

func (e *EntraConfig) sanitize() {
	e.TenantID = strings.TrimSpace(e.TenantID)
	e.ClientID = strings.TrimSpace(e.ClientID)
	e.AuthorityHost = strings.TrimSpace(e.AuthorityHost)
	if e.AuthorityHost == "" {
		e.AuthorityHost = defaultAuthorityHost
	}
	e.Scope = strings.Join(strings.Fields(e.Scope), " ")
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID string   `env:"USER_ID" envDefault:"dev-user"`
	Email  string   `env:"EMAIL"   envDefault:"dev@example.com"`
	Groups []string `env:"GROUPS"  envDefault:"admins"          envSeparator:";"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// Entra configuration (used when Mode=oauth).
	Entra EntraConfig `envPrefix:"ENTRA_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// AdminGroup is the Entra group object id for kiosk administrators.
	AdminGroup string `env:"ADMIN_GROUP"`

	// UserGroup is the Entra group object id for kiosk operators.
	UserGroup string `env:"USER_GROUP"`

	// SessionTTL is the kiosk session lifetime, independent of token expiry.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"12h"`
}

// Sanitize normalises authentication configuration values.
func (a *AuthConfig) Sanitize() {
	a.Entra.sanitize()
	a.AdminGroup = strings.TrimSpace(a.AdminGroup)
	a.UserGroup = strings.TrimSpace(a.UserGroup)
	if a.SessionTTL < time.Minute {
		a.SessionTTL = defaultSessionTTL
	}
}

// GraphScopes returns the resource scopes from Scope, dropping the OIDC
// protocol scopes that never appear on an access token.
func (e EntraConfig) GraphScopes() []string {
	out := make([]string, 0)
	for _, s := range strings.Fields(e.Scope) {
		switch strings.ToLower(s) {
		case "openid", "profile", "email", "offline_access":
			continue
		}
		out = append(out, s)
	}
	return out
}
