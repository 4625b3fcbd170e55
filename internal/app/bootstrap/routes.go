// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	articlesfeature "github.com/dalemusser/folio/internal/app/features/articles"
	auditlogfeature "github.com/dalemusser/folio/internal/app/features/auditlog"
	authgooglefeature "github.com/dalemusser/folio/internal/app/features/authgoogle"
	commentsfeature "github.com/dalemusser/folio/internal/app/features/comments"
	dashboardfeature "github.com/dalemusser/folio/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/folio/internal/app/features/health"
	logoutfeature "github.com/dalemusser/folio/internal/app/features/logout"
	tagsfeature "github.com/dalemusser/folio/internal/app/features/tags"
	userinfofeature "github.com/dalemusser/folio/internal/app/features/userinfo"
	usersfeature "github.com/dalemusser/folio/internal/app/features/users"
	worksfeature "github.com/dalemusser/folio/internal/app/features/works"
	"github.com/dalemusser/folio/internal/app/store/content"
	tagstore "github.com/dalemusser/folio/internal/app/store/tags"
	userstore "github.com/dalemusser/folio/internal/app/store/users"
	"github.com/dalemusser/folio/internal/app/system/auditlog"
	"github.com/dalemusser/folio/internal/app/system/auth"
	"github.com/dalemusser/folio/internal/app/system/metrics"
	"github.com/dalemusser/folio/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Folio serves a JSON API under /api, the sign-in handshake under /auth,
// and /health and /metrics for operators. The session user is loaded on
// every request; mutating /api routes are rate limited per caller.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on each request so role changes and deleted accounts
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.SQL))

	auditLog := auditlog.New(deps.Audit, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metrics.Middleware)

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Operator endpoints
	healthHandler := healthfeature.NewHandler(deps.SQL, string(deps.Dialect), deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	// Authentication
	googleHandler := authgooglefeature.NewHandler(userstore.New(deps.SQL), sessionMgr, auditLog,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, appCfg.AdminEmail, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/auth/logout", logoutfeature.Routes(logoutHandler))

	r.Route("/api", func(api chi.Router) {
		if appCfg.WriteRateLimit > 0 {
			limiter := ratelimit.New(appCfg.WriteRateLimit, time.Minute)
			api.Use(ratelimit.Writes(limiter, callerKey, logger))
		}

		userinfofeature.MountRoutes(api, userinfofeature.NewHandler())

		dashboardHandler := dashboardfeature.NewHandler(deps.SQL, logger)
		api.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		commentsHandler := commentsfeature.NewHandler(deps.SQL, auditLog, logger)
		api.Mount("/comments", commentsfeature.Routes(commentsHandler, sessionMgr))

		articlesHandler := articlesfeature.NewHandler(deps.SQL, auditLog, logger)
		api.Mount("/articles", articlesfeature.Routes(articlesHandler, sessionMgr,
			commentsfeature.EntityRoutes(commentsHandler, sessionMgr, content.Articles)))

		worksHandler := worksfeature.NewHandler(deps.SQL, auditLog, logger)
		api.Mount("/works", worksfeature.Routes(worksHandler, sessionMgr,
			commentsfeature.EntityRoutes(commentsHandler, sessionMgr, content.Works)))

		labelsHandler := tagsfeature.NewHandler(deps.SQL, tagstore.Labels, auditLog, logger)
		api.Mount("/labels", tagsfeature.Routes(labelsHandler, sessionMgr))

		techHandler := tagsfeature.NewHandler(deps.SQL, tagstore.Technologies, auditLog, logger)
		api.Mount("/technologies", tagsfeature.Routes(techHandler, sessionMgr))

		usersHandler := usersfeature.NewHandler(deps.SQL, sessionMgr, auditLog, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

		auditHandler := auditlogfeature.NewHandler(deps.Audit, logger)
		api.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	})

	return r, nil
}

// callerKey buckets signed-in callers by user id and everyone else by IP.
func callerKey(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return "user:" + u.ID
	}
	return "ip:" + ratelimit.ClientIP(r)
}
