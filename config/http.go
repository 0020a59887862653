package config

import "time"

const defaultHTTPAddr = ":8080"

// HTTPConfig controls the kiosk API listener.
type HTTPConfig struct {
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain scopes the session cookie; empty means the request host.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize fills in the listener address and replaces non-positive timeouts.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = defaultHTTPAddr
	}
	h.ReadTimeout = positiveOr(h.ReadTimeout, 30*time.Second)
	h.WriteTimeout = positiveOr(h.WriteTimeout, 30*time.Second)
	h.IdleTimeout = positiveOr(h.IdleTimeout, 120*time.Second)
	h.ShutdownTimeout = positiveOr(h.ShutdownTimeout, 10*time.Second)
}

func positiveOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
