package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	domainauth "github.com/target/totem-api/internal/domain/auth"
	"github.com/target/totem-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
// Nil services leave their routes unregistered.
type RouterServices struct {
	Auth         AuthServiceInterface
	Accesses     *service.AccessService
	Settings     *service.SettingsService
	Directory    *service.DirectoryService
	Readiness    map[string]ReadinessCheck
	CookieDomain string
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(logger))
	r.Use(Recover(logger))

	health := &HealthHandlers{Checks: services.Readiness}
	r.Get("/healthz", health.Live)
	r.Head("/healthz", health.Live)
	r.Get("/readyz", health.Ready)
	r.Head("/readyz", health.Ready)

	if services.Auth == nil {
		logger.Warn("auth service not configured; API routes disabled")
		return r
	}

	auth := &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: logger}
	registerAuthRoutes(r, auth)

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireAuth)
		admin := RequireRole(services.Auth, domainauth.RoleAdmin)

		if services.Accesses != nil {
			registerAccessRoutes(api, &AccessHandlers{Svc: services.Accesses}, admin)
		}
		if services.Settings != nil {
			registerSettingsRoutes(api, &SettingsHandlers{Svc: services.Settings}, admin)
		}
		if services.Directory != nil {
			registerDirectoryRoutes(api, &DirectoryHandlers{Svc: services.Directory})
		}
	})

	return r
}

func registerAuthRoutes(r chi.Router, h *AuthHandlers) {
	r.Get("/auth/login", h.Login)
	r.Get("/auth/callback", h.Callback)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/session", h.Session)
}

func registerAccessRoutes(r chi.Router, h *AccessHandlers, admin func(http.Handler) http.Handler) {
	r.Get("/presence", h.Presence)
	r.Post("/accesses", h.Create)
	r.With(admin).Get("/accesses", h.List)
	r.Patch("/accesses/{accessID}/destination", h.UpdateDestination)
	r.Get("/visitors/{visitorID}/accesses", h.ByVisitor)
	r.Get("/visitors/{visitorID}/last-access", h.LastAccess)
	r.Get("/lists/resolve", h.ResolveList)
}

func registerSettingsRoutes(r chi.Router, h *SettingsHandlers, admin func(http.Handler) http.Handler) {
	r.Get("/settings", h.List)
	r.Get("/settings/{key}", h.Get)
	r.With(admin).Put("/settings/{key}", h.Put)
}

func registerDirectoryRoutes(r chi.Router, h *DirectoryHandlers) {
	r.Get("/me", h.Me)
	r.Get("/sites", h.Sites)
	r.Get("/sites/by-path", h.SiteByPath)
	r.Get("/users", h.Users)
	r.Get("/users/{userID}/photo", h.Photo)
}
