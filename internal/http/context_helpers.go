package httpx

import (
	"context"

	domainauth "github.com/target/totem-api/internal/domain/auth"
)

type sessionKey struct{}

// SetSessionInContext attaches the kiosk session resolved by RequireAuth.
// A nil session leaves ctx unchanged.
func SetSessionInContext(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session attached by RequireAuth, if any.
func SessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*domainauth.Session)
	return s, ok && s != nil
}
