package config

import (
	"os"
	"strings"
)

// AppConfig is the complete process configuration, read from the
// environment with caarlos0/env. Each section lives in its own file.
type AppConfig struct {
	// IsDev is set by DEV=true or NODE_ENV=development. Dev mode switches
	// logging to the text handler at debug level.
	IsDev bool `env:"DEV" envDefault:"false"`

	Auth    AuthConfig
	Graph   GraphConfig
	Renewal RenewalConfig

	// Redis holds sessions, delegated tokens, silent redirects and the list id cache.
	Redis RedisConfig `envPrefix:"REDIS_"`
	Cache CacheConfig

	HTTP HTTPConfig

	// Services is the comma separated list of modes this process runs.
	Services string `env:"SERVICES" envDefault:"http,token-renewal"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to every section. Call it once after env.Parse.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.Graph.Sanitize()
	c.Renewal.Sanitize()
	c.Cache.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()

	if !c.IsDev {
		switch strings.ToLower(os.Getenv("NODE_ENV")) {
		case "development", "dev":
			c.IsDev = true
		}
	}
	if c.IsDev {
		c.Observability.Logging.Level = "debug"
		c.Observability.Logging.Format = LogFormatText
	}
}

// GetEnabledServices parses Services.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// ServiceEnabled reports whether mode is listed in Services. An invalid
// Services value enables nothing.
func (c *AppConfig) ServiceEnabled(mode ServiceMode) bool {
	enabled, err := c.GetEnabledServices()
	return err == nil && enabled[mode]
}
