package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/totem-api/config"
	"github.com/target/totem-api/internal/adapters/graph"
	"github.com/target/totem-api/internal/data"
	httpx "github.com/target/totem-api/internal/http"
	"github.com/target/totem-api/internal/observability/statsd"
	"github.com/target/totem-api/internal/ports"
	"github.com/target/totem-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Accounts  *service.AccountRegistry
	Renewal   *service.TokenRenewalService
	Accesses  *service.AccessService
	Settings  *service.SettingsService
	Directory *service.DirectoryService

	// Readiness holds the dependency probes served on /readyz.
	Readiness map[string]httpx.ReadinessCheck

	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

func newRenewalService(
	cfg *config.AppConfig,
	auth *AuthComponents,
	obs ObservabilityContainer,
	logger *slog.Logger,
) *service.TokenRenewalService {
	svc, err := service.NewTokenRenewalService(service.TokenRenewalServiceOptions{
		Provider:     service.NewTokenProvider(auth.Silent, auth.Service),
		Accounts:     auth.Accounts,
		Scopes:       cfg.Auth.Entra.GraphScopes(),
		Interval:     cfg.Renewal.Interval,
		InitialDelay: cfg.Renewal.InitialDelay,
		Logger:       logger.With("component", "token_renewal"),
		Metrics:      obs.MetricsSink,
	})
	if err != nil {
		logger.Warn("token renewal disabled", "error", err)
		return nil
	}
	return svc
}

// graphServices are the list and directory services backed by Graph.
type graphServices struct {
	accesses  *service.AccessService
	settings  *service.SettingsService
	directory *service.DirectoryService
}

type graphServicesOptions struct {
	Config  *config.AppConfig
	Tokens  ports.AccessTokenSource
	Cache   ports.CacheRepository
	Metrics statsd.Sink
	Logger  *slog.Logger
}

func buildGraphServices(opts graphServicesOptions) graphServices {
	var out graphServices
	logger := opts.Logger
	gcfg := opts.Config.Graph

	client, err := graph.NewClient(graph.ClientOptions{
		BaseURL: gcfg.BaseURL,
		Timeout: gcfg.Timeout,
		Tokens:  opts.Tokens,
		Metrics: opts.Metrics,
		Logger:  logger.With("component", "graph_client"),
	})
	if err != nil {
		logger.Warn("graph client unavailable; list and directory routes disabled", "error", err)
		return out
	}

	if dir, dirErr := graph.NewDirectory(client); dirErr == nil {
		out.directory, err = service.NewDirectoryService(service.DirectoryServiceOptions{
			Directory: dir,
			Logger:    logger.With("component", "directory_service"),
		})
		if err != nil {
			logger.Warn("directory service disabled", "error", err)
		}
	} else {
		logger.Warn("graph directory unavailable", "error", dirErr)
	}

	lists, err := graph.NewLists(client, gcfg.SiteID)
	if err != nil {
		logger.Warn("sharepoint lists unavailable; access and settings routes disabled", "error", err)
		return out
	}

	out.accesses, err = service.NewAccessService(service.AccessServiceOptions{
		Lists:          lists,
		Cache:          opts.Cache,
		AccessListID:   gcfg.AccessListID,
		AccessListName: gcfg.AccessListName,
		VisitorListID:  gcfg.VisitorListID,
		Lookback:       gcfg.Lookback(),
		PageSize:       gcfg.PageSize,
		ListIDTTL:      opts.Config.Cache.ListIDTTL,
		LookupTimeout:  gcfg.Timeout,
		Now:            data.RealTimeProvider{}.Now,
		Logger:         logger.With("component", "access_service"),
		Metrics:        opts.Metrics,
	})
	if err != nil {
		logger.Warn("access service disabled", "error", err)
	}

	out.settings, err = service.NewSettingsService(service.SettingsServiceOptions{
		Lists:  lists,
		ListID: gcfg.SettingsListID,
		Logger: logger.With("component", "settings_service"),
	})
	if err != nil {
		logger.Warn("settings service disabled", "error", err)
	}

	return out
}

// NewServices creates all application services.
// Services whose configuration is incomplete are left nil and logged.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	obs := buildObservability(logger, cfg.Observability)
	container := ServiceContainer{
		Observability: obs,
		Readiness:     readinessChecks(deps.RedisClient),
	}

	auth := BuildAuth(AuthConfig{
		Auth:        cfg.Auth,
		Renewal:     cfg.Renewal,
		KeyPrefix:   cfg.Cache.KeyPrefix,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if auth == nil {
		// Graph calls are delegated; without sign-in there is no token to use.
		return container
	}
	container.Auth = auth.Service
	container.Accounts = auth.Accounts

	container.Renewal = newRenewalService(cfg, auth, obs, logger)
	if container.Renewal == nil {
		return container
	}

	var cache ports.CacheRepository
	if deps.RedisClient != nil {
		cache = data.NewRedisCacheRepo(deps.RedisClient, cfg.Cache.KeyPrefix)
	}

	gs := buildGraphServices(graphServicesOptions{
		Config:  cfg,
		Tokens:  container.Renewal,
		Cache:   cache,
		Metrics: obs.MetricsSink,
		Logger:  logger,
	})
	container.Accesses = gs.accesses
	container.Settings = gs.settings
	container.Directory = gs.directory

	return container
}

func readinessChecks(client redis.UniversalClient) map[string]httpx.ReadinessCheck {
	checks := make(map[string]httpx.ReadinessCheck)
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

// startHTTPServerIfEnabled starts the HTTP server if enabled.
func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}
	logger := deps.logger
	if logger == nil {
		logger = slog.Default()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				logger.WarnContext(ctx, "dropping background service error", "service", descriptor.name, "error", errMsg)
			}
		}
	}()

	logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			mode: svc.mode,
			name: svc.name,
			done: done,
		})
	}

	return handles
}

func newTokenRenewalBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeTokenRenewal,
		name: "token renewal",
		start: func(ctx context.Context) error {
			if deps == nil || deps.cfg == nil {
				return nil
			}
			renewal := deps.cfg.Services.Renewal
			if renewal == nil {
				deps.logger.WarnContext(ctx, "token renewal enabled but not configured; skipping")
				return nil
			}
			return renewal.Run(ctx)
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newTokenRenewalBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

// startServices starts all enabled services and returns their completion channels.
func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	return waitForShutdown(shutdownConfig{
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  result.HTTPServer,
		httpTimeout: cfg.Config.HTTP.ShutdownTimeout,
		metrics:     cfg.Services.Observability.MetricsSink,
		logger:      logger,
		backgrounds: result.Background,
	})
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	httpTimeout time.Duration
	metrics     *statsd.Client
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		// The service context is already canceled; shut down on a fresh deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
			Timeout: cfg.httpTimeout,
		}); err != nil {
			return err
		}
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	if err := cfg.metrics.Close(); err != nil {
		cfg.logger.Warn("closing metrics sink", "error", err)
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
