package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/totem-api/internal/domain/auth"
	"github.com/target/totem-api/internal/mocks"
	"go.uber.org/mock/gomock"
)

type countingSink struct {
	mu     sync.Mutex
	counts map[string][]map[string]string
}

func newCountingSink() *countingSink {
	return &countingSink{counts: make(map[string][]map[string]string)}
}

func (s *countingSink) Count(name string, _ int64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[name] = append(s.counts[name], tags)
}

func (s *countingSink) Gauge(string, float64, map[string]string)        {}
func (s *countingSink) Timing(string, time.Duration, map[string]string) {}

func (s *countingSink) tags(name string) []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.counts[name]...)
}

var kioskAccount = domainauth.Account{ID: "oid-kiosk.tid-1", Username: "kiosk@contoso.example"}

func newRenewalService(t *testing.T, opts TokenRenewalServiceOptions) (*mocks.MockTokenProvider, *AccountRegistry, *TokenRenewalService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockTokenProvider(ctrl)
	if opts.Accounts == nil {
		opts.Accounts = NewAccountRegistry()
	}
	opts.Provider = provider
	if opts.Scopes == nil {
		opts.Scopes = []string{"User.Read"}
	}
	svc, err := NewTokenRenewalService(opts)
	require.NoError(t, err)
	return provider, opts.Accounts, svc
}

func TestNewTokenRenewalService_Validation(t *testing.T) {
	_, err := NewTokenRenewalService(TokenRenewalServiceOptions{Accounts: NewAccountRegistry()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TokenProvider is required")

	ctrl := gomock.NewController(t)
	_, err = NewTokenRenewalService(TokenRenewalServiceOptions{Provider: mocks.NewMockTokenProvider(ctrl)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccountRegistry is required")
}

func TestNewTokenRenewalService_Defaults(t *testing.T) {
	_, _, svc := newRenewalService(t, TokenRenewalServiceOptions{InitialDelay: -1})

	assert.Equal(t, DefaultRenewalInterval, svc.interval)
	assert.Equal(t, DefaultRenewalInitialDelay, svc.initialDelay)
}

func TestAcquireTokenWithRecovery_NoActiveAccount(t *testing.T) {
	_, _, svc := newRenewalService(t, TokenRenewalServiceOptions{})

	// No expectations: any provider call fails the test.
	assert.Nil(t, svc.AcquireTokenWithRecovery(context.Background(), false))
}

func TestAcquireTokenWithRecovery_Success(t *testing.T) {
	provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{})
	accounts.Add(kioskAccount)
	ctx := context.Background()

	want := &domainauth.TokenResult{Account: kioskAccount, AccessToken: "at-1"}
	provider.EXPECT().
		AcquireTokenSilent(ctx, domainauth.SilentRequest{
			Account:      kioskAccount,
			Scopes:       []string{"User.Read"},
			ForceRefresh: true,
		}).
		Return(want, nil)

	got := svc.AcquireTokenWithRecovery(ctx, true)

	assert.Equal(t, want, got)
}

func TestAcquireTokenWithRecovery_RecoverableErrorsRedirectOnce(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"interaction required", domainauth.ErrInteractionRequired},
		{"wrapped interaction required", fmt.Errorf("refresh: %w", domainauth.ErrInteractionRequired)},
		{"monitor window timeout", fmt.Errorf("silent: %w", domainauth.ErrMonitorWindowTimeout)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newCountingSink()
			provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{Metrics: sink})
			accounts.Add(kioskAccount)
			ctx := context.Background()

			gomock.InOrder(
				provider.EXPECT().AcquireTokenSilent(ctx, gomock.Any()).Return(nil, tt.err),
				provider.EXPECT().
					LoginRedirect(ctx, domainauth.RedirectRequest{
						Account: kioskAccount,
						Scopes:  []string{"User.Read"},
						Prompt:  domainauth.PromptNone,
					}).
					Return(nil).
					Times(1),
			)

			assert.Nil(t, svc.AcquireTokenWithRecovery(ctx, false))

			redirects := sink.tags("token.redirect")
			require.Len(t, redirects, 1)
			assert.Equal(t, TriggerOnDemand, redirects[0]["trigger"])
		})
	}
}

func TestAcquireTokenWithRecovery_GenericErrorDoesNotRedirect(t *testing.T) {
	sink := newCountingSink()
	provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{Metrics: sink})
	accounts.Add(kioskAccount)
	ctx := context.Background()

	provider.EXPECT().AcquireTokenSilent(ctx, gomock.Any()).Return(nil, errors.New("network unreachable"))
	provider.EXPECT().LoginRedirect(gomock.Any(), gomock.Any()).Times(0)

	assert.Nil(t, svc.AcquireTokenWithRecovery(ctx, false))

	renewals := sink.tags("token.renewal")
	require.Len(t, renewals, 1)
	assert.Equal(t, "error", renewals[0]["result"])
	assert.Empty(t, sink.tags("token.redirect"))
}

func TestAcquireTokenWithRecovery_RedirectFailureIsSwallowed(t *testing.T) {
	provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{})
	accounts.Add(kioskAccount)
	ctx := context.Background()

	provider.EXPECT().AcquireTokenSilent(ctx, gomock.Any()).Return(nil, domainauth.ErrInteractionRequired)
	provider.EXPECT().LoginRedirect(ctx, gomock.Any()).Return(errors.New("redis down"))

	assert.NotPanics(t, func() {
		assert.Nil(t, svc.AcquireTokenWithRecovery(ctx, false))
	})
}

func TestGetAccessToken(t *testing.T) {
	provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{})
	accounts.Add(kioskAccount)
	ctx := context.Background()

	provider.EXPECT().
		AcquireTokenSilent(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req domainauth.SilentRequest) (*domainauth.TokenResult, error) {
			assert.False(t, req.ForceRefresh)
			return &domainauth.TokenResult{AccessToken: "at-1"}, nil
		})

	token, ok := svc.GetAccessToken(ctx)
	assert.True(t, ok)
	assert.Equal(t, "at-1", token)

	provider.EXPECT().AcquireTokenSilent(ctx, gomock.Any()).Return(nil, errors.New("boom"))

	token, ok = svc.GetAccessToken(ctx)
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestAccessToken_ReturnsSentinelWhenUnavailable(t *testing.T) {
	_, _, svc := newRenewalService(t, TokenRenewalServiceOptions{})

	token, err := svc.AccessToken(context.Background())

	require.ErrorIs(t, err, ErrNoAccessToken)
	assert.Empty(t, token)
}

func TestRenew_ConcurrentCallIsNoop(t *testing.T) {
	sink := newCountingSink()
	provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{Metrics: sink})
	accounts.Add(kioskAccount)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	provider.EXPECT().
		AcquireTokenSilent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domainauth.SilentRequest) (*domainauth.TokenResult, error) {
			close(started)
			<-release
			return &domainauth.TokenResult{AccessToken: "at"}, nil
		}).
		Times(1)

	first := make(chan bool, 1)
	go func() { first <- svc.Renew(ctx) }()

	<-started
	assert.False(t, svc.Renew(ctx), "second renewal must not run while one is in flight")
	close(release)
	assert.True(t, <-first)

	noops := 0
	for _, tags := range sink.tags("token.renewal") {
		if tags["result"] == "noop" {
			noops++
		}
	}
	assert.Equal(t, 1, noops)
}

func TestRenew_DoesNotForceRefresh(t *testing.T) {
	provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{})
	accounts.Add(kioskAccount)

	provider.EXPECT().
		AcquireTokenSilent(gomock.Any(), domainauth.SilentRequest{
			Account:      kioskAccount,
			Scopes:       []string{"User.Read"},
			ForceRefresh: false,
		}).
		Return(&domainauth.TokenResult{AccessToken: "cached"}, nil).
		Times(2)

	assert.True(t, svc.Renew(context.Background()))
	assert.True(t, svc.Renew(context.Background()))
}

func TestRun_ArmsWhenAccountSignsIn(t *testing.T) {
	provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{
		InitialDelay: 0,
		Interval:     time.Hour,
	})

	renewed := make(chan domainauth.SilentRequest, 1)
	provider.EXPECT().
		AcquireTokenSilent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domainauth.SilentRequest) (*domainauth.TokenResult, error) {
			renewed <- req
			return &domainauth.TokenResult{AccessToken: "at"}, nil
		}).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	accounts.Add(kioskAccount)

	select {
	case req := <-renewed:
		assert.Equal(t, kioskAccount.ID, req.Account.ID)
		assert.False(t, req.ForceRefresh)
	case <-time.After(2 * time.Second):
		t.Fatal("initial renewal did not run")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRun_TicksWhileArmed(t *testing.T) {
	provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{
		InitialDelay: 0,
		Interval:     10 * time.Millisecond,
	})
	accounts.Add(kioskAccount)

	var mu sync.Mutex
	calls := 0
	enough := make(chan struct{})
	provider.EXPECT().
		AcquireTokenSilent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domainauth.SilentRequest) (*domainauth.TokenResult, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			if calls == 3 {
				close(enough)
			}
			return nil, errors.New("transient")
		}).
		MinTimes(3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case <-enough:
	case <-time.After(2 * time.Second):
		t.Fatal("renewal did not keep ticking after transient failures")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRun_IdleWithoutAccounts(t *testing.T) {
	_, _, svc := newRenewalService(t, TokenRenewalServiceOptions{InitialDelay: 0, Interval: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// No expectations: an armed timer would call the provider and fail the test.
	err := svc.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRun_DisarmsWhenLastAccountSignsOut(t *testing.T) {
	provider, accounts, svc := newRenewalService(t, TokenRenewalServiceOptions{
		InitialDelay: time.Hour,
		Interval:     time.Hour,
	})
	provider.EXPECT().AcquireTokenSilent(gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	accounts.Add(kioskAccount)
	accounts.Remove(kioskAccount.ID)
	accounts.Add(domainauth.Account{ID: "other"})
	accounts.Remove("other")

	cancel()
	require.NoError(t, <-done)
}

func TestNewTokenProvider_DelegatesBothHalves(t *testing.T) {
	ctrl := gomock.NewController(t)
	silent := mocks.NewMockTokenProvider(ctrl)
	redirector := mocks.NewMockTokenProvider(ctrl)
	ctx := context.Background()

	silent.EXPECT().AcquireTokenSilent(ctx, gomock.Any()).Return(&domainauth.TokenResult{AccessToken: "x"}, nil)
	redirector.EXPECT().LoginRedirect(ctx, gomock.Any()).Return(nil)

	p := NewTokenProvider(silent, redirector)
	res, err := p.AcquireTokenSilent(ctx, domainauth.SilentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "x", res.AccessToken)
	require.NoError(t, p.LoginRedirect(ctx, domainauth.RedirectRequest{}))
}
