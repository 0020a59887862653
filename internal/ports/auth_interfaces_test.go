package ports_test

import (
	"testing"

	"github.com/target/totem-api/internal/mocks"
	mockauth "github.com/target/totem-api/internal/mocks/auth"
	"github.com/target/totem-api/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mockauth.MockAuthProvider)(nil)
	var _ ports.SessionStore = (*mockauth.MemorySessionStore)(nil)
	var _ ports.RoleMapper = (*mockauth.StaticRoleMapper)(nil)
	var _ ports.TokenCache = (*mockauth.MemoryTokenCache)(nil)
	var _ ports.RedirectStore = (*mockauth.MemoryRedirectStore)(nil)
	var _ ports.TokenProvider = (*mocks.MockTokenProvider)(nil)
	var _ ports.ListStore = (*mocks.MockListStore)(nil)
	var _ ports.GraphDirectory = (*mocks.MockGraphDirectory)(nil)
}
