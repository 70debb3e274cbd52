package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/society-waste-service/internal/api/http/handlers"
	"github.com/spec-kit/society-waste-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Sessions       *handlers.SessionHandler
	Issues         *handlers.IssuesHandler
	Societies      *handlers.SocietiesHandler
	AuthMiddleware *auth.AuthMiddleware
	// Metrics serves the Prometheus exposition; nil leaves /metrics unmounted.
	Metrics fiber.Handler
	// UploadDir is served read-only under UploadURLPrefix; empty disables it.
	UploadDir       string
	UploadURLPrefix string
}

// NewApp builds the fiber app. Immutable makes params, headers and form values safe to
// keep after the handler returns; handlers hand them straight to stores and events.
func NewApp(name string, bodyLimit int) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:   name,
		BodyLimit: bodyLimit,
		Immutable: true,
	})
}

// RegisterRoutes wires HTTP routes. The API is served at the root and again under /api,
// where /api/users is an alias of /accounts.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}
	if cfg.UploadDir != "" {
		app.Static(cfg.UploadURLPrefix, cfg.UploadDir, fiber.Static{Browse: false})
	}

	registerAPI(app, cfg, "/accounts")

	api := app.Group("/api")
	registerAPI(api, cfg, "/accounts")
	registerAccountRoutes(api.Group("/users"), cfg)
}

func registerAPI(r fiber.Router, cfg RouteConfig, accountsPrefix string) {
	authn := cfg.AuthMiddleware

	registerAccountRoutes(r.Group(accountsPrefix), cfg)

	admins := r.Group("/admins")
	admins.Post("/signup", cfg.Accounts.SignupAdmin)
	admins.Post("/login", cfg.Accounts.LoginAdmin)

	r.Post("/login", cfg.Sessions.Login)
	r.Post("/logout", authn.Handle, cfg.Sessions.Logout)
	r.Get("/session", authn.Handle, auth.RequireAnyRole(), cfg.Sessions.Current)
	r.Get("/session/route", authn.Optional, cfg.Sessions.Route)

	issues := r.Group("/issues", authn.Handle, auth.RequireAdmin())
	issues.Get("/", cfg.Issues.ListAll)
	issues.Put("/:issueId", cfg.Issues.UpdateStatus)
	issues.Get("/:issueId/history", cfg.Issues.History)

	societies := r.Group("/societies")
	societies.Get("/", cfg.Societies.List)
	societies.Get("/map", cfg.Societies.Map)
	societies.Get("/:id", cfg.Societies.Get)
	societies.Get("/:id/schedule", cfg.Societies.Schedule)
}

func registerAccountRoutes(accounts fiber.Router, cfg RouteConfig) {
	authn := cfg.AuthMiddleware

	accounts.Post("/signup", cfg.Accounts.SignupAccount)
	accounts.Post("/login", cfg.Accounts.LoginAccount)
	accounts.Post("/:ownerId/issues", authn.Handle, auth.RequireOwner("ownerId"), cfg.Issues.Submit)
	accounts.Get("/:ownerId/issues", authn.Handle, auth.RequireOwnerOrAdmin("ownerId"), cfg.Issues.ListForOwner)
}
