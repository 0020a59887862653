package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	domainauth "github.com/target/totem-api/internal/domain/auth"
	obserrors "github.com/target/totem-api/internal/observability/errors"
	"github.com/target/totem-api/internal/observability/metrics"
	"github.com/target/totem-api/internal/observability/statsd"
	"github.com/target/totem-api/internal/ports"
)

// Renewal defaults.
const (
	DefaultRenewalInterval     = 30 * time.Minute
	DefaultRenewalInitialDelay = 5 * time.Second
)

// Renewal triggers, used as the metric trigger tag.
const (
	TriggerStartup  = "startup"
	TriggerTick     = "tick"
	TriggerOnDemand = "on_demand"
)

// ErrNoAccessToken is returned by AccessToken when no token could be obtained.
var ErrNoAccessToken = errors.New("no access token available")

// TokenRenewalServiceOptions groups dependencies for TokenRenewalService.
type TokenRenewalServiceOptions struct {
	Provider     ports.TokenProvider // Required: silent acquisition and redirect recovery
	Accounts     *AccountRegistry    // Required: signed-in accounts
	Scopes       []string            // Optional: scopes requested for Graph
	Interval     time.Duration       // Optional: period of proactive renewal
	InitialDelay time.Duration       // Optional: delay of the first renewal after sign-in
	Logger       *slog.Logger        // Optional: structured logger
	Metrics      statsd.Sink         // Optional: metrics sink (StatsD-compatible)
}

// TokenRenewalService keeps the active account's Graph token fresh.
//
// While at least one account is signed in a periodic renewal is armed: one
// run after InitialDelay, then every Interval. A failed silent acquisition
// that only the IdP can resolve is recovered with a single prompt=none
// redirect; every other failure is logged and left to the next tick.
// No error ever escapes the loop.
type TokenRenewalService struct {
	provider     ports.TokenProvider
	accounts     *AccountRegistry
	scopes       []string
	interval     time.Duration
	initialDelay time.Duration
	logger       *slog.Logger
	metrics      statsd.Sink

	inFlight atomic.Bool
}

var _ ports.AccessTokenSource = (*TokenRenewalService)(nil)

// NewTokenRenewalService constructs a new TokenRenewalService.
func NewTokenRenewalService(opts TokenRenewalServiceOptions) (*TokenRenewalService, error) {
	if opts.Provider == nil {
		return nil, errors.New("TokenProvider is required")
	}
	if opts.Accounts == nil {
		return nil, errors.New("AccountRegistry is required")
	}

	s := &TokenRenewalService{
		provider:     opts.Provider,
		accounts:     opts.Accounts,
		scopes:       append([]string(nil), opts.Scopes...),
		interval:     opts.Interval,
		initialDelay: opts.InitialDelay,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
	if s.interval <= 0 {
		s.interval = DefaultRenewalInterval
	}
	if s.initialDelay < 0 {
		s.initialDelay = DefaultRenewalInitialDelay
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "token_renewal")
	return s, nil
}

// AcquireTokenWithRecovery obtains a token for the active account without
// user interaction. It returns nil when no account is active or the attempt
// failed; in the recoverable case a redirect reacquisition has been prepared.
func (s *TokenRenewalService) AcquireTokenWithRecovery(ctx context.Context, forceRefresh bool) *domainauth.TokenResult {
	return s.acquire(ctx, forceRefresh, TriggerOnDemand)
}

// GetAccessToken returns the active account's access token, if one could be obtained.
func (s *TokenRenewalService) GetAccessToken(ctx context.Context) (string, bool) {
	res := s.AcquireTokenWithRecovery(ctx, false)
	if res == nil || res.AccessToken == "" {
		return "", false
	}
	return res.AccessToken, true
}

// AccessToken adapts GetAccessToken for outbound Graph calls.
func (s *TokenRenewalService) AccessToken(ctx context.Context) (string, error) {
	if token, ok := s.GetAccessToken(ctx); ok {
		return token, nil
	}
	return "", ErrNoAccessToken
}

// Renew runs one proactive renewal. It is a no-op, returning false, while
// another renewal is in flight.
func (s *TokenRenewalService) Renew(ctx context.Context) bool {
	return s.renew(ctx, TriggerTick)
}

func (s *TokenRenewalService) renew(ctx context.Context, trigger string) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.DebugContext(ctx, "renewal already in flight", "trigger", trigger)
		metrics.EmitTokenRenewal(s.metrics, metrics.TokenRenewal{Trigger: trigger, Result: metrics.ResultNoop})
		return false
	}
	defer s.inFlight.Store(false)

	// The provider serves the cached token until it nears expiry.
	s.acquire(ctx, false, trigger)
	return true
}

func (s *TokenRenewalService) acquire(ctx context.Context, force bool, trigger string) *domainauth.TokenResult {
	acc, ok := s.accounts.Active()
	if !ok {
		return nil
	}

	start := time.Now()
	res, err := s.provider.AcquireTokenSilent(ctx, domainauth.SilentRequest{
		Account:      acc,
		Scopes:       s.scopes,
		ForceRefresh: force,
	})
	if err == nil {
		metrics.EmitTokenRenewal(s.metrics, metrics.TokenRenewal{
			Trigger:  trigger,
			Result:   metrics.ResultSuccess,
			Duration: time.Since(start),
		})
		return res
	}

	if !domainauth.IsRecoverableByRedirect(err) {
		s.logger.ErrorContext(ctx, "silent token acquisition failed",
			"account", acc.ID,
			"trigger", trigger,
			"error", err,
			"error_class", obserrors.Classify(err),
		)
		metrics.EmitTokenRenewal(s.metrics, metrics.TokenRenewal{
			Trigger:  trigger,
			Result:   metrics.ResultError,
			Duration: time.Since(start),
			Err:      err,
		})
		return nil
	}

	s.logger.WarnContext(ctx, "silent token acquisition needs the identity provider, redirecting",
		"account", acc.ID,
		"trigger", trigger,
		"error", err,
	)
	redirectErr := s.provider.LoginRedirect(ctx, domainauth.RedirectRequest{
		Account: acc,
		Scopes:  s.scopes,
		Prompt:  domainauth.PromptNone,
	})
	if redirectErr != nil {
		s.logger.ErrorContext(ctx, "redirect reacquisition failed",
			"account", acc.ID,
			"error", redirectErr,
		)
		metrics.EmitTokenRenewal(s.metrics, metrics.TokenRenewal{
			Trigger:  trigger,
			Result:   metrics.ResultError,
			Duration: time.Since(start),
			Err:      redirectErr,
		})
		return nil
	}

	metrics.EmitTokenRenewal(s.metrics, metrics.TokenRenewal{
		Trigger:  trigger,
		Result:   metrics.ResultRedirect,
		Duration: time.Since(start),
		Err:      err,
	})
	return nil
}

// Run arms the periodic renewal while any account is signed in and disarms
// it when the last one signs out. It returns when ctx is cancelled.
func (s *TokenRenewalService) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting token renewal",
		"interval", s.interval,
		"initial_delay", s.initialDelay,
	)

	changes, unsubscribe := s.accounts.Subscribe()
	defer unsubscribe()

	var (
		stop context.CancelFunc
		done chan struct{}
	)
	disarm := func() {
		if stop == nil {
			return
		}
		stop()
		<-done
		stop, done = nil, nil
		s.logger.InfoContext(ctx, "token renewal disarmed")
	}
	reconcile := func() {
		if s.accounts.Len() == 0 {
			disarm()
			return
		}
		if stop != nil {
			return
		}
		var loopCtx context.Context
		loopCtx, stop = context.WithCancel(ctx)
		done = make(chan struct{})
		go func(ch chan struct{}) {
			defer close(ch)
			s.schedule(loopCtx)
		}(done)
		s.logger.InfoContext(ctx, "token renewal armed")
	}

	reconcile()
	for {
		select {
		case <-ctx.Done():
			disarm()
			s.logger.InfoContext(ctx, "token renewal stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-changes:
			reconcile()
		}
	}
}

// schedule runs the delayed initial renewal, then one per interval.
func (s *TokenRenewalService) schedule(ctx context.Context) {
	initial := time.NewTimer(s.initialDelay)
	defer initial.Stop()

	select {
	case <-ctx.Done():
		return
	case <-initial.C:
		s.renew(ctx, TriggerStartup)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.renew(ctx, TriggerTick)
		}
	}
}

// tokenProvider joins a silent acquirer with a redirector.
type tokenProvider struct {
	ports.SilentTokenAcquirer
	ports.LoginRedirector
}

// NewTokenProvider combines the identity adapter's silent acquisition with
// the redirect recovery implemented by AuthService.
func NewTokenProvider(silent ports.SilentTokenAcquirer, redirector ports.LoginRedirector) ports.TokenProvider {
	return tokenProvider{SilentTokenAcquirer: silent, LoginRedirector: redirector}
}
