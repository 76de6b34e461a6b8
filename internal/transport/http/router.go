package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	courierapp "github.com/trustdelivery/backoffice/internal/courier/app"
	"github.com/trustdelivery/backoffice/internal/identity/app"
	"github.com/trustdelivery/backoffice/internal/identity/domain"
	"github.com/trustdelivery/backoffice/internal/identity/repository"
	"github.com/trustdelivery/backoffice/internal/transport/http/middleware"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Auth       *app.AuthService
	Tokens     *app.TokenService
	Accounts   repository.AccountRepository
	Users      *app.AccountService
	Riders     *app.RiderService
	Shops      *app.ShopService
	Deliveries *courierapp.DeliveryService

	LoginLimiter *middleware.IPRateLimiter
	Logger       *slog.Logger
	Debug        bool
}

// NewRouter wires middleware and handlers into the route tree.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	authHandler := NewAuthHandler(deps.Auth, deps.Logger, deps.Debug)
	userHandler := NewUserHandler(deps.Users, deps.Logger, deps.Debug)
	riderHandler := NewRiderHandler(deps.Riders, deps.Logger, deps.Debug)
	shopHandler := NewShopHandler(deps.Shops, deps.Logger, deps.Debug)
	deliveryHandler := NewDeliveryHandler(deps.Deliveries, deps.Logger, deps.Debug)

	authenticate := middleware.Authenticate(deps.Tokens, deps.Accounts, deps.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusOK, "ok")
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if deps.LoginLimiter != nil {
					r.Use(deps.LoginLimiter.Middleware)
				}
				authHandler.RegisterCredentialRoutes(r)
			})
			authHandler.RegisterPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				authHandler.RegisterProtectedRoutes(r)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticate)
			userHandler.RegisterProfileRoutes(r)
			r.Patch("/change-password", authHandler.handleChangePassword)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager))
				userHandler.RegisterAdminReadRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(domain.RoleAdmin))
				userHandler.RegisterAdminWriteRoutes(r)
			})
		})

		r.Route("/riders", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager))
			riderHandler.RegisterRoutes(r)
		})

		r.Route("/shops", func(r chi.Router) {
			r.Use(authenticate)
			shopHandler.RegisterReadRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager))
				shopHandler.RegisterWriteRoutes(r)
			})
		})

		r.Route("/deliveries", func(r chi.Router) {
			r.Use(authenticate)
			deliveryHandler.RegisterRoutes(r)
		})
	})

	return r
}

// requestLogger emits one structured line per request after it completes.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"requestID", chimw.GetReqID(r.Context()),
			)
		})
	}
}
