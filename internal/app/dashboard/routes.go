package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/address/create"
	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/address/list"
	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/address/remove"
	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/address/update"
	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/auth/signin"
	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/auth/signup"
	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/auth/surface"
	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/postalcode/lookup"
	profileread "github.com/magabrotheeeer/address-dashboard/internal/http/handlers/profile/read"
	profileupdate "github.com/magabrotheeeer/address-dashboard/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/address-dashboard/internal/http/middlewarectx"
)

// RegisterRoutes регистрирует все маршруты дашборда.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d *Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	// Страница входа и операции сессии
	r.Get(middlewarectx.SignInPath, surface.New(logger, d.Session).ServeHTTP)
	r.Post("/auth/signin", signin.New(logger, d.Auth).ServeHTTP)
	r.Post("/auth/signup", signup.New(logger, d.Auth).ServeHTTP)
	r.Post("/auth/logout", logout.New(logger, d.Auth).ServeHTTP)

	// Защищённые маршруты
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RouteGuard(logger, d.Session))
		r.Use(middlewarectx.RateLimit(logger, d.RateLimit))

		addresses := list.New(logger, d.Addresses)
		r.Get("/", addresses.ServeHTTP)
		r.Get("/addresses", addresses.ServeHTTP)
		r.Post("/addresses", create.New(logger, d.Addresses).ServeHTTP)
		r.Put("/addresses/{id}", update.New(logger, d.Addresses).ServeHTTP)
		r.Delete("/addresses/{id}", remove.New(logger, d.Addresses).ServeHTTP)

		r.Get("/profile", profileread.New(logger, d.Profiles).ServeHTTP)
		r.Put("/profile", profileupdate.New(logger, d.Profiles).ServeHTTP)

		r.Get("/postal-code/{zip}", lookup.New(logger, d.PostalCodes).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
}
