package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	domainauth "github.com/target/totem-api/internal/domain/auth"
)

// Logging logs one line per request. 5xx responses log at error level and
// 4xx at warn, so probe and asset traffic stays at info.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteError(w, ErrorParams{
						Code:    http.StatusInternalServerError,
						ErrCode: "internal",
						Err:     errors.New("internal server error"),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns a middleware that requires authentication.
// If the user is not authenticated, it returns a 401 Unauthorized response.
func RequireAuth(authSvc AuthServiceInterface) func(http.Handler) http.Handler {
	return (&AuthHandlers{Svc: authSvc}).RequireAuth
}

// RequireAuth resolves the session cookie and stores the session in the
// request context. When token renewal has prepared a silent sign-in redirect
// for the session's account, the request is handed to the identity provider
// instead: browsers are redirected, API callers get a 401 carrying the URL.
func (h *AuthHandlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := getSessionFromRequest(r, h.Svc)
		if session == nil {
			writeAuthenticationRequired(w)
			return
		}

		if session.AccountID != "" {
			pending, err := h.Svc.TakePendingRedirect(r.Context(), session.AccountID)
			if err != nil {
				h.logger().WarnContext(r.Context(), "pending redirect lookup failed",
					"account_id", session.AccountID, "error", err)
			}
			if pending != nil {
				h.handOffRedirect(w, r, pending)
				return
			}
		}

		ctx := SetSessionInContext(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *AuthHandlers) handOffRedirect(w http.ResponseWriter, r *http.Request, pending *domainauth.PendingRedirect) {
	returnTo := "/"
	if r.Method == http.MethodGet && !isAPIRequest(r) {
		returnTo = safeRedirectPath(r.URL.RequestURI())
	}
	h.setOAuthCookies(w, r, oauthCookieParams{State: pending.State, Nonce: pending.Nonce, RedirectURI: returnTo})
	h.logger().InfoContext(r.Context(), "handing off silent sign-in redirect", "path", r.URL.Path)

	if isAPIRequest(r) || wantsJSON(r) {
		WriteJSON(w, http.StatusUnauthorized, struct {
			errorBody
			RedirectTo string `json:"redirect_to"`
		}{
			errorBody:  errorBody{Error: "interaction_required", Message: "sign-in must be refreshed"},
			RedirectTo: pending.AuthURL,
		})
		return
	}
	http.Redirect(w, r, pending.AuthURL, http.StatusFound)
}

// RequireRole returns a middleware that requires a specific role.
// If the user doesn't have the required role, it returns a 403 Forbidden response.
func RequireRole(authSvc AuthServiceInterface, requiredRole domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				session = getSessionFromRequest(r, authSvc)
			}
			if session == nil {
				writeAuthenticationRequired(w)
				return
			}

			if !hasRequiredRole(session.Role, requiredRole) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_permissions",
					Err:     errors.New("insufficient permissions"),
				})
				return
			}

			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthenticationRequired(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusUnauthorized,
		ErrCode: "authentication_required",
		Err:     errors.New("authentication required"),
	})
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// getSessionFromRequest retrieves and validates a session from the request.
func getSessionFromRequest(r *http.Request, authSvc AuthServiceInterface) *domainauth.Session {
	sessionCookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	session, err := authSvc.GetSession(r.Context(), sessionCookie.Value)
	if err != nil {
		return nil
	}

	return session
}

// roleRank orders roles guest < user < admin. Unknown roles rank below guest.
func roleRank(role domainauth.Role) int {
	switch role {
	case domainauth.RoleAdmin:
		return 2
	case domainauth.RoleUser:
		return 1
	case domainauth.RoleGuest:
		return 0
	default:
		return -1
	}
}

func hasRequiredRole(userRole, requiredRole domainauth.Role) bool {
	have, need := roleRank(userRole), roleRank(requiredRole)
	return have >= 0 && need >= 0 && have >= need
}
