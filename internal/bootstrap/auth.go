package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/totem-api/config"
	"github.com/target/totem-api/internal/adapters/authroles"
	"github.com/target/totem-api/internal/adapters/devauth"
	"github.com/target/totem-api/internal/adapters/oidc"
	redisadapter "github.com/target/totem-api/internal/adapters/redis"
	"github.com/target/totem-api/internal/data"
	"github.com/target/totem-api/internal/ports"
	"github.com/target/totem-api/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	Renewal     config.RenewalConfig
	KeyPrefix   string
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// AuthComponents is the sign-in side of the service container.
type AuthComponents struct {
	Service  *service.AuthService
	Accounts *service.AccountRegistry
	// Silent performs refresh-token grants for the renewal loop.
	Silent ports.SilentTokenAcquirer
}

// authProvider is implemented by both the Entra and the dev provider.
type authProvider interface {
	ports.AuthProvider
	ports.SilentTokenAcquirer
}

// BuildAuth creates the auth service and its stores for the configured auth mode.
// Returns nil if auth is not configured or configuration is invalid.
func BuildAuth(cfg AuthConfig) *AuthComponents {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisClient == nil {
		logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		return nil
	}

	sessions := redisadapter.NewSessionStoreWithPrefix(cfg.RedisClient, cfg.KeyPrefix+redisadapter.SessionPrefix)
	tokens := redisadapter.NewTokenCache(cfg.RedisClient, cfg.KeyPrefix+redisadapter.TokenPrefix, 0)
	redirects := redisadapter.NewRedirectStore(cfg.RedisClient, cfg.KeyPrefix+redisadapter.RedirectPrefix)

	prov, err := buildAuthProvider(cfg, tokens)
	if err != nil {
		logger.Warn("auth provider unavailable, auth disabled", "mode", cfg.Auth.Mode, "error", err)
		return nil
	}

	accounts := service.NewAccountRegistry()
	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: sessions,
		Roles: authroles.StaticRoleMapper{
			AdminGroup: cfg.Auth.AdminGroup,
			UserGroup:  cfg.Auth.UserGroup,
		},
		Tokens:      tokens,
		Accounts:    accounts,
		Redirects:   redirects,
		RedirectURL: cfg.Auth.Entra.RedirectURL,
		SessionTTL:  cfg.Auth.SessionTTL,
		Now:         data.RealTimeProvider{}.Now,
		Logger:      logger.With("component", "auth_service"),
	})

	return &AuthComponents{Service: svc, Accounts: accounts, Silent: prov}
}

//nolint:ireturn // the provider is chosen by auth mode at runtime.
func buildAuthProvider(cfg AuthConfig, tokens ports.TokenCache) (authProvider, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:          cfg.Auth.DevAuth.UserID,
			Email:           cfg.Auth.DevAuth.Email,
			Groups:          cfg.Auth.DevAuth.Groups,
			SessionDuration: cfg.Auth.SessionTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		entra := cfg.Auth.Entra
		if entra.TenantID == "" || entra.ClientID == "" || entra.ClientSecret == "" {
			return nil, fmt.Errorf("entra configuration incomplete (tenant_id_empty=%t client_id_empty=%t client_secret_empty=%t)",
				entra.TenantID == "", entra.ClientID == "", entra.ClientSecret == "")
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:      entra.ClientID,
			ClientSecret:  entra.ClientSecret,
			RedirectURL:   entra.RedirectURL,
			Scope:         entra.Scope,
			DiscoveryURL:  entra.DiscoveryURL(),
			Tokens:        tokens,
			SilentTimeout: cfg.Renewal.SilentTimeout,
			RefreshSkew:   cfg.Renewal.RefreshSkew,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		return prov, nil

	default:
		return nil, errors.New("unsupported auth mode")
	}
}
