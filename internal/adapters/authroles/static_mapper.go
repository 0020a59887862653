// Package authroles maps Entra group object ids onto kiosk roles.
package authroles

import (
	"strings"

	domainauth "github.com/target/totem-api/internal/domain/auth"
)

// StaticRoleMapper grants admin to members of AdminGroup and user to members
// of UserGroup. Group ids compare case-insensitively; admin wins.
type StaticRoleMapper struct {
	AdminGroup string
	UserGroup  string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	switch {
	case memberOf(groups, m.AdminGroup):
		return domainauth.RoleAdmin
	case memberOf(groups, m.UserGroup):
		return domainauth.RoleUser
	default:
		return domainauth.RoleGuest
	}
}

func memberOf(groups []string, want string) bool {
	if want == "" {
		return false
	}
	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g), want) {
			return true
		}
	}
	return false
}
