// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	blogsfeature "github.com/dalemusser/leadcentral/internal/app/features/blogs"
	dashboardfeature "github.com/dalemusser/leadcentral/internal/app/features/dashboard"
	domainsfeature "github.com/dalemusser/leadcentral/internal/app/features/domains"
	errorsfeature "github.com/dalemusser/leadcentral/internal/app/features/errors"
	healthfeature "github.com/dalemusser/leadcentral/internal/app/features/health"
	homefeature "github.com/dalemusser/leadcentral/internal/app/features/home"
	leadcapturefeature "github.com/dalemusser/leadcentral/internal/app/features/leadcapture"
	leadsfeature "github.com/dalemusser/leadcentral/internal/app/features/leads"
	loginfeature "github.com/dalemusser/leadcentral/internal/app/features/login"
	logoutfeature "github.com/dalemusser/leadcentral/internal/app/features/logout"
	writersfeature "github.com/dalemusser/leadcentral/internal/app/features/writers"
	appresources "github.com/dalemusser/leadcentral/internal/app/resources"
	"github.com/dalemusser/leadcentral/internal/app/store/audit"
	"github.com/dalemusser/leadcentral/internal/app/store/ratelimit"
	"github.com/dalemusser/leadcentral/internal/app/store/sessions"
	userstore "github.com/dalemusser/leadcentral/internal/app/store/users"
	"github.com/dalemusser/leadcentral/internal/app/system/auditlog"
	"github.com/dalemusser/leadcentral/internal/app/system/auth"
	"github.com/dalemusser/leadcentral/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// The router carries two authentication surfaces:
//   - Web UI under /dashboard: cookie sessions + CSRF
//   - JSON API under /api: bearer tokens, no CSRF
//   - Public capture API under /api/capture: per-domain capture keys
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser and BearerAuth both fetch the user fresh on every
	// request, so role changes and disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase, logger))

	// Boot the template engine once at startup. Dev mode reloads templates
	// on each render for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Audit logger for security and admin event tracking.
	auditStore := audit.New(deps.MongoDatabase)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Admin:   appCfg.AuditLogAdmin,
		Capture: appCfg.AuditLogCapture,
	})

	// Sessions store backs both cookie sessions and API bearer tokens.
	sessionsStore := sessions.New(deps.MongoDatabase)

	// Rate limiting for login attempts (nil disables it).
	var rateLimitStore *ratelimit.Store
	if appCfg.RateLimitEnabled {
		rateLimitStore = ratelimit.New(
			deps.MongoDatabase,
			appCfg.RateLimitLoginAttempts,
			appCfg.RateLimitLoginWindow,
			appCfg.RateLimitLoginLockout,
		)
	}

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// ── Global middleware ────────────────────────────────────────────────

	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// Loads SessionUser into context if a cookie session exists. API
	// requests simply have no session, which is fine.
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for the web UI. The JSON API authenticates with
	// bearer tokens and the capture API with capture keys, so everything
	// under /api is exempt.
	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("leadcentral_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)
	r.Use(func(next http.Handler) http.Handler {
		csrfHandler := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/") {
				next.ServeHTTP(w, req)
				return
			}
			csrfHandler.ServeHTTP(w, req)
		})
	})

	// ── Handlers ─────────────────────────────────────────────────────────

	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, sessionsStore, logger)
	domainsHandler := domainsfeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
	blogsHandler := blogsfeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
	leadsHandler := leadsfeature.NewHandler(deps.MongoDatabase, logger)
	writersHandler := writersfeature.NewHandler(deps.MongoDatabase, auditLogger, logger)
	captureHandler := leadcapturefeature.NewHandler(deps.MongoDatabase, auditLogger, logger)

	loginHandler := loginfeature.NewHandler(
		deps.MongoDatabase,
		sessionMgr,
		errLog,
		auditLogger,
		sessionsStore,
		rateLimitStore,
		logger,
	)
	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, sessionsStore, logger)

	// ── Public routes ────────────────────────────────────────────────────

	// Health check endpoints for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Embedded static assets.
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	r.Mount("/", homefeature.Routes())
	r.Mount("/login", loginfeature.Routes(loginHandler))
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages.
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// ── Dashboard (cookie sessions) ──────────────────────────────────────

	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))
	r.Mount("/dashboard/domains", domainsfeature.Routes(domainsHandler, sessionMgr))
	r.Mount("/dashboard/blogs", blogsfeature.Routes(blogsHandler, sessionMgr))
	r.Mount("/dashboard/leads", leadsfeature.Routes(leadsHandler, sessionMgr))
	r.Mount("/dashboard/writers", writersfeature.Routes(writersHandler, sessionMgr))

	// ── JSON API ─────────────────────────────────────────────────────────

	r.Route("/api", func(api chi.Router) {
		// Public capture endpoints authenticate with per-domain capture
		// keys inside their own router.
		api.Mount("/capture", leadcapturefeature.Routes(captureHandler))

		api.Route("/auth", func(a chi.Router) {
			// POST /api/auth/login is the only unauthenticated API
			// endpoint; it issues the bearer token the rest of the
			// API requires.
			a.Post("/login", loginHandler.APILogin)
			a.With(sessionMgr.BearerAuth(sessionsStore)).Post("/logout", logoutHandler.APILogout)
		})

		api.Group(func(g chi.Router) {
			g.Use(sessionMgr.BearerAuth(sessionsStore))
			g.Use(auth.RequireRoleJSON(models.RoleAdmin))

			g.Get("/domains", domainsHandler.APIList)
			g.Post("/domains", domainsHandler.APICreate)
			g.Get("/leads", leadsHandler.APIList)
			g.Get("/users/writers", writersHandler.APIList)
			g.Post("/users/writers", writersHandler.APICreate)
			g.Get("/stats/dashboard", dashboardHandler.APIStats)
		})

		api.Group(func(g chi.Router) {
			g.Use(sessionMgr.BearerAuth(sessionsStore))
			g.Use(auth.RequireRoleJSON(models.RoleAdmin, models.RoleWriter))

			g.Get("/blogs", blogsHandler.APIList)
			g.Post("/blogs", blogsHandler.APICreate)
		})
	})

	// 404 catch-all for unmatched routes.
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}
