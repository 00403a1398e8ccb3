package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/auth"
	"github.com/thisisdkyadav/hostel-management-system-backend-sub000/internal/authz"
)

// RouterConfig bundles the dependencies the router mounts.
type RouterConfig struct {
	Handlers *Handlers
	Sessions *auth.SessionMiddleware
	Access   *authz.Middleware
	Chi      *ChiMiddleware
}

// NewRouter builds the full route tree. Authorization is layered: the
// session middleware attaches the principal, then per-group access
// middleware checks route or capability keys against the principal's
// effective sets.
func NewRouter(cfg *RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(cfg.Chi.CORS())
	r.Use(MetricsMiddleware())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health/live", cfg.Handlers.HealthLive)
		r.Get("/health/ready", cfg.Handlers.HealthReady)

		r.Route("/auth", func(r chi.Router) {
			r.With(cfg.Chi.LoginRateLimit()).Post("/login", cfg.Handlers.Login)

			r.Group(func(r chi.Router) {
				r.Use(cfg.Sessions.RequireSession)
				r.Post("/logout", cfg.Handlers.Logout)
				r.Post("/refresh", cfg.Handlers.RefreshAuthz)
				r.Get("/me", cfg.Handlers.Me)
				r.Put("/pinned-tabs", cfg.Handlers.UpdatePinnedTabs)
			})
		})

		// Everything below requires an authenticated principal.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Sessions.RequireSession)

			r.Route("/admin", func(r chi.Router) {
				r.Use(cfg.Access.RequireRouteAccess(authz.RouteAdminUsers))

				r.Route("/users/{id}/authz", func(r chi.Router) {
					r.Use(cfg.Access.RequireCapability(authz.CapUsersAuthz))
					r.Get("/", cfg.Handlers.GetUserAuthz)
					r.Put("/", cfg.Handlers.PutUserAuthz)
					r.Delete("/", cfg.Handlers.DeleteUserAuthz)
				})

				r.With(cfg.Access.RequireCapability(authz.CapUsersEdit)).
					Put("/users/{id}/role", cfg.Handlers.PutUserRole)

				r.Get("/authz/catalog", cfg.Handlers.GetCatalog)
				r.Get("/authz/roles/{role}", cfg.Handlers.GetRoleDefaults)
			})

			r.Route("/students", func(r chi.Router) {
				r.With(cfg.Access.RequireCapability(authz.CapStudentsView)).
					Get("/", cfg.Handlers.ListStudents)
				r.With(cfg.Access.RequireCapability(authz.CapStudentsView)).
					Get("/{id}", cfg.Handlers.GetStudent)
			})

			r.Route("/complaints", func(r chi.Router) {
				r.With(cfg.Access.RequireCapability(authz.CapComplaintsCreate)).
					Post("/", cfg.Handlers.CreateComplaint)
				r.With(cfg.Access.RequireCapability(authz.CapComplaintsView)).
					Get("/", cfg.Handlers.ListComplaints)
				r.With(cfg.Access.RequireCapability(authz.CapComplaintsResolve)).
					Put("/{id}/status", cfg.Handlers.UpdateComplaintStatus)
			})

			r.Route("/visitors", func(r chi.Router) {
				r.With(cfg.Access.RequireCapability(authz.CapVisitorsRegister)).
					Post("/", cfg.Handlers.RegisterVisitor)
				r.With(cfg.Access.RequireCapability(authz.CapVisitorsView)).
					Get("/", cfg.Handlers.ListVisitors)
				r.With(cfg.Access.RequireCapability(authz.CapVisitorsCheckout)).
					Put("/{id}/checkout", cfg.Handlers.CheckoutVisitor)
			})
		})
	})

	return r
}
