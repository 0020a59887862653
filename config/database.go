package config

import (
	"strings"
	"time"
)

// RedisConfig selects a direct, sentinel or cluster Redis deployment.
// Variables carry the REDIS_ prefix (REDIS_URI, REDIS_USE_SENTINEL, ...).
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`

	// DB applies to direct and sentinel clients; cluster mode has no databases.
	DB          int           `env:"DB"           envDefault:"0"`
	DialTimeout time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
}

// CacheConfig controls the keys totem writes to Redis.
type CacheConfig struct {
	// ListIDTTL is how long a list id resolved by display name stays cached.
	ListIDTTL time.Duration `env:"CACHE_LIST_ID_TTL" envDefault:"24h"`

	// KeyPrefix namespaces every key this service writes.
	KeyPrefix string `env:"CACHE_KEY_PREFIX" envDefault:"totem:"`
}

// Sanitize keeps the list id TTL at one minute or more and makes sure the
// prefix ends in a separator.
func (c *CacheConfig) Sanitize() {
	if c.ListIDTTL < time.Minute {
		c.ListIDTTL = time.Minute
	}
	if c.KeyPrefix != "" && !strings.HasSuffix(c.KeyPrefix, ":") {
		c.KeyPrefix += ":"
	}
}
