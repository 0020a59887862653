package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ServiceMode names one runnable part of the totem process.
type ServiceMode string

const (
	// ServiceModeHTTP serves the kiosk API.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeTokenRenewal keeps delegated Graph tokens fresh in the background.
	ServiceModeTokenRenewal ServiceMode = "token-renewal"
)

// ValidServiceModes lists every mode accepted in SERVICES, in start order.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeTokenRenewal}
}

func validModeNames() string {
	names := make([]string, 0, len(ValidServiceModes()))
	for _, m := range ValidServiceModes() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

// ParseServices turns a comma separated SERVICES value into a set of modes.
// Blank entries are ignored and duplicates collapse.
func ParseServices(raw string) (map[ServiceMode]bool, error) {
	if strings.TrimSpace(raw) == "" {
		return map[ServiceMode]bool{}, errors.New("at least one service must be specified")
	}

	enabled := make(map[ServiceMode]bool)
	for field := range strings.SplitSeq(raw, ",") {
		name := strings.TrimSpace(field)
		if name == "" {
			continue
		}
		mode := ServiceMode(name)
		if !slices.Contains(ValidServiceModes(), mode) {
			return nil, fmt.Errorf("invalid service name: %q (valid options: %s)", name, validModeNames())
		}
		enabled[mode] = true
	}

	if len(enabled) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return enabled, nil
}
