package config

import "time"

// RenewalConfig controls the proactive token renewal loop.
type RenewalConfig struct {
	// Interval between proactive renewals.
	Interval time.Duration `env:"TOKEN_RENEWAL_INTERVAL" envDefault:"30m"`

	// InitialDelay before the first renewal once an account becomes active.
	InitialDelay time.Duration `env:"TOKEN_RENEWAL_INITIAL_DELAY" envDefault:"5s"`

	// SilentTimeout bounds a single silent acquisition. Exceeding it is reported
	// as a monitor window timeout and recovered with a redirect.
	SilentTimeout time.Duration `env:"TOKEN_SILENT_TIMEOUT" envDefault:"10s"`

	// RefreshSkew treats cached tokens expiring within this window as stale.
	RefreshSkew time.Duration `env:"TOKEN_REFRESH_SKEW" envDefault:"5m"`
}

// Sanitize applies guardrails to renewal configuration values.
func (r *RenewalConfig) Sanitize() {
	if r.Interval < time.Minute {
		r.Interval = time.Minute
	}
	if r.InitialDelay < 0 {
		r.InitialDelay = 0
	}
	if r.SilentTimeout < time.Second {
		r.SilentTimeout = time.Second
	}
	if r.RefreshSkew < 0 {
		r.RefreshSkew = 0
	}
}
