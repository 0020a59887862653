// Package oidc signs operators in against Microsoft Entra ID and renews their
// delegated Graph tokens with the refresh-token grant.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/totem-api/internal/domain/auth"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/ports"
	"golang.org/x/oauth2"
)

const (
	defaultSilentTimeout = 10 * time.Second
	defaultRefreshSkew   = 5 * time.Minute
	defaultPrompt        = "select_account"
)

// interactionCodes are OAuth error codes after which only the user can help.
var interactionCodes = map[string]bool{
	"invalid_grant":        true,
	"interaction_required": true,
	"login_required":       true,
	"consent_required":     true,
}

// Provider implements ports.AuthProvider and ports.SilentTokenAcquirer.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier

	tokens        ports.TokenCache
	silentTimeout time.Duration
	refreshSkew   time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

var (
	_ ports.AuthProvider        = (*Provider)(nil)
	_ ports.SilentTokenAcquirer = (*Provider)(nil)
)

// ProviderConfig holds configuration for the Entra provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	HTTPClient   *http.Client // Optional, defaults to a 30s client

	// Tokens backs AcquireTokenSilent. Sign-in works without it.
	Tokens        ports.TokenCache
	SilentTimeout time.Duration
	RefreshSkew   time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

// DiscoveryDocument is the subset of OIDC discovery metadata tests serve.
type DiscoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserinfoEndpoint      string `json:"userinfo_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// NewProvider performs discovery against cfg.DiscoveryURL and returns a ready provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	p := &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint:     op.Endpoint(),
		},
		httpClient:    httpClient,
		oidcProvider:  op,
		verifier:      op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		tokens:        cfg.Tokens,
		silentTimeout: cfg.SilentTimeout,
		refreshSkew:   cfg.RefreshSkew,
		now:           cfg.Now,
		logger:        cfg.Logger,
	}
	if p.silentTimeout <= 0 {
		p.silentTimeout = defaultSilentTimeout
	}
	if p.refreshSkew <= 0 {
		p.refreshSkew = defaultRefreshSkew
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p, nil
}

// Begin builds the authorize URL. Prompt defaults to select_account; silent
// redirect recovery passes prompt=none with the account's login hint.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	prompt := in.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_mode", "query"),
		oauth2.SetAuthURLParam("prompt", prompt),
	}
	if in.LoginHint != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", in.LoginHint))
	}

	return p.config.AuthCodeURL(state, opts...), state, nonce, nil
}

// Exchange redeems the authorization code, verifies the id_token and returns
// the operator identity together with the delegated token set.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	rawID, err := getIDTokenFromToken(token)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}
	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}
	var claims entraClaims
	if err := idTok.Claims(&claims); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if claims.Nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("invalid nonce")
	}

	ident := claims.identity()
	ident.Tokens = p.tokenSet(token, rawID, "")
	ident.ExpiresAt = ident.Tokens.ExpiresOn
	if ident.ExpiresAt.IsZero() {
		ident.ExpiresAt = p.now().Add(time.Hour)
	}
	return ident, nil
}

// AcquireTokenSilent returns the cached access token while it is valid for
// longer than the refresh skew, and otherwise redeems the refresh token.
// Failures only a redirect can fix wrap ErrInteractionRequired or
// ErrMonitorWindowTimeout.
func (p *Provider) AcquireTokenSilent(ctx context.Context, req domainauth.SilentRequest) (*domainauth.TokenResult, error) {
	if req.Account.IsZero() {
		return nil, domainauth.ErrNoAccount
	}
	if p.tokens == nil {
		return nil, errors.New("token cache not configured")
	}

	cached, err := p.tokens.Load(ctx, req.Account.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, fmt.Errorf("no cached tokens: %w", domainauth.ErrInteractionRequired)
		}
		return nil, fmt.Errorf("load tokens: %w", err)
	}

	if !req.ForceRefresh && cached.Valid(p.now(), p.refreshSkew) && coversScopes(cached.Scopes, req.Scopes) {
		return result(req.Account, cached), nil
	}
	if cached.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token: %w", domainauth.ErrInteractionRequired)
	}

	refreshed, err := p.refresh(ctx, cached)
	if err != nil {
		return nil, err
	}
	if err := p.tokens.Store(ctx, req.Account.ID, refreshed); err != nil {
		// The token is still good for this caller; the next pass refreshes again.
		p.logger.WarnContext(ctx, "store refreshed tokens failed",
			"account_id", req.Account.ID,
			"error", err)
	}
	return result(req.Account, refreshed), nil
}

func (p *Provider) refresh(ctx context.Context, cached domainauth.TokenSet) (domainauth.TokenSet, error) {
	sctx, cancel := context.WithTimeout(ctx, p.silentTimeout)
	defer cancel()

	src := p.config.TokenSource(context.WithValue(sctx, oauth2.HTTPClient, p.httpClient), &oauth2.Token{RefreshToken: cached.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return domainauth.TokenSet{}, classifyRefreshError(ctx, sctx, err)
	}

	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		rawID = cached.IDToken
	}
	return p.tokenSet(tok, rawID, cached.RefreshToken), nil
}

// classifyRefreshError decides whether a failed refresh can be recovered by a
// silent redirect. A timeout only counts when the caller's own context is
// still alive.
func classifyRefreshError(parent, silent context.Context, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && interactionCodes[re.ErrorCode] {
		return fmt.Errorf("refresh token rejected (%s): %w", re.ErrorCode, domainauth.ErrInteractionRequired)
	}
	if errors.Is(silent.Err(), context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("refresh token grant: %w", domainauth.ErrMonitorWindowTimeout)
	}
	return fmt.Errorf("refresh token grant: %w", err)
}

func (p *Provider) tokenSet(tok *oauth2.Token, rawID, previousRefresh string) domainauth.TokenSet {
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}
	scopes := p.config.Scopes
	if granted, ok := tok.Extra("scope").(string); ok && granted != "" {
		scopes = strings.Fields(granted)
	}
	return domainauth.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		IDToken:      rawID,
		Scopes:       scopes,
		ExpiresOn:    tok.Expiry,
	}
}

func result(acc domainauth.Account, ts domainauth.TokenSet) *domainauth.TokenResult {
	return &domainauth.TokenResult{
		Account:     acc,
		AccessToken: ts.AccessToken,
		Scopes:      slices.Clone(ts.Scopes),
		ExpiresOn:   ts.ExpiresOn,
	}
}

// coversScopes reports whether every requested scope was granted. Reserved
// OIDC scopes are never echoed back by Entra and are ignored.
func coversScopes(granted, requested []string) bool {
	for _, s := range requested {
		switch strings.ToLower(s) {
		case "openid", "profile", "offline_access", "email":
			continue
		}
		if !slices.ContainsFunc(granted, func(g string) bool { return sameScope(g, s) }) {
			return false
		}
	}
	return true
}

// sameScope matches "User.Read" against itself or a resource-qualified form
// such as "https://graph.microsoft.com/User.Read".
func sameScope(granted, want string) bool {
	g, w := strings.ToLower(granted), strings.ToLower(want)
	return g == w || strings.HasSuffix(g, "/"+w)
}

// entraClaims is the id_token shape issued by the v2.0 endpoint.
type entraClaims struct {
	Sub               string   `json:"sub"`
	ObjectID          string   `json:"oid"`
	TenantID          string   `json:"tid"`
	PreferredUsername string   `json:"preferred_username"`
	Name              string   `json:"name"`
	GivenName         string   `json:"given_name"`
	FamilyName        string   `json:"family_name"`
	Email             string   `json:"email"`
	Groups            []string `json:"groups"`
	Nonce             string   `json:"nonce"`
}

func (c entraClaims) identity() domainauth.Identity {
	userID := firstNonEmpty(c.ObjectID, c.Sub)
	given, family := c.GivenName, c.FamilyName
	if given == "" && family == "" {
		given, family = splitName(c.Name)
	}
	accountID := userID
	if c.ObjectID != "" && c.TenantID != "" {
		accountID = c.ObjectID + "." + c.TenantID
	}
	return domainauth.Identity{
		UserID:    userID,
		FirstName: given,
		LastName:  family,
		Email:     firstNonEmpty(c.Email, c.PreferredUsername),
		Groups:    c.Groups,
		Account: domainauth.Account{
			ID:       accountID,
			Username: c.PreferredUsername,
			Name:     c.Name,
			TenantID: c.TenantID,
		},
	}
}

func splitName(name string) (string, string) {
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first, strings.TrimSpace(last)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, (length*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

// getIDTokenFromToken extracts the id_token from oauth2.Token.
func getIDTokenFromToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
