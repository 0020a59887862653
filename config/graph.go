package config

import (
	"strings"
	"time"
)

// DefaultLookbackHours is the presence lookback window used when none (or a non-positive one) is configured.
const DefaultLookbackHours = 48

// GraphConfig contains Microsoft Graph and SharePoint list configuration.
type GraphConfig struct {
	// BaseURL is the Graph API root.
	BaseURL string `env:"GRAPH_BASE_URL" envDefault:"https://graph.microsoft.com/v1.0"`

	// SiteID identifies the SharePoint site hosting the kiosk lists.
	SiteID string `env:"GRAPH_SITE_ID"`

	// AccessListID is the list of access events. When empty it is resolved by AccessListName.
	AccessListID   string `env:"GRAPH_ACCESS_LIST_ID"`
	AccessListName string `env:"GRAPH_ACCESS_LIST_NAME" envDefault:"Accessi"`

	// VisitorListID is the visitor directory list.
	VisitorListID string `env:"GRAPH_VISITOR_LIST_ID"`

	// SettingsListID is the key/value kiosk settings list.
	SettingsListID string `env:"GRAPH_SETTINGS_LIST_ID"`

	// LookbackHours bounds which access events are considered for presence.
	LookbackHours int `env:"ACCESS_LOOKBACK_HOURS" envDefault:"48"`

	// PageSize is the $top used for paginated access reads.
	PageSize int `env:"GRAPH_PAGE_SIZE" envDefault:"200"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `env:"GRAPH_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to Graph configuration values.
func (g *GraphConfig) Sanitize() {
	g.BaseURL = strings.TrimRight(strings.TrimSpace(g.BaseURL), "/")
	g.SiteID = strings.TrimSpace(g.SiteID)
	g.AccessListID = strings.TrimSpace(g.AccessListID)
	g.VisitorListID = strings.TrimSpace(g.VisitorListID)
	g.SettingsListID = strings.TrimSpace(g.SettingsListID)
	if g.LookbackHours <= 0 {
		g.LookbackHours = DefaultLookbackHours
	}
	if g.PageSize < 1 {
		g.PageSize = 200
	}
	if g.PageSize > 999 {
		g.PageSize = 999
	}
	if g.Timeout <= 0 {
		g.Timeout = 30 * time.Second
	}
}

// Lookback returns the presence lookback window as a duration.
func (g GraphConfig) Lookback() time.Duration {
	hours := g.LookbackHours
	if hours <= 0 {
		hours = DefaultLookbackHours
	}
	return time.Duration(hours) * time.Hour
}
