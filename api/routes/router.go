package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ParzivalXIII/inventory-management-system/api/controllers"
	"github.com/ParzivalXIII/inventory-management-system/api/middleware"
	analyticssvc "github.com/ParzivalXIII/inventory-management-system/internal/analytics"
	authsvc "github.com/ParzivalXIII/inventory-management-system/internal/auth"
	ordersvc "github.com/ParzivalXIII/inventory-management-system/internal/orders"
	orgsvc "github.com/ParzivalXIII/inventory-management-system/internal/organizations"
	productsvc "github.com/ParzivalXIII/inventory-management-system/internal/products"
	"github.com/ParzivalXIII/inventory-management-system/pkg/auth/session"
	"github.com/ParzivalXIII/inventory-management-system/pkg/config"
	"github.com/ParzivalXIII/inventory-management-system/pkg/db"
	"github.com/ParzivalXIII/inventory-management-system/pkg/logger"
	"github.com/ParzivalXIII/inventory-management-system/pkg/metrics"
	"github.com/ParzivalXIII/inventory-management-system/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisStore redis.Store,
	sessionManager session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	authService authsvc.Service,
	signupService authsvc.SignupService,
	organizationService orgsvc.Service,
	productService productsvc.Service,
	orderService ordersvc.Service,
	analyticsService analyticssvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	r.Get("/health", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(logg, map[string]controllers.Pinger{
		"database": dbP,
		"redis":    redisStore,
	}))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/docs", controllers.Docs())
	r.Get("/docs/openapi.json", controllers.OpenAPIDocument())

	r.With(
		middleware.AuthRateLimit(signupPolicy, redisStore, logg),
		middleware.Idempotency(redisStore, logg),
	).Post("/signup", controllers.AuthSignup(signupService, logg))
	r.With(middleware.AuthRateLimit(loginPolicy, redisStore, logg)).
		Post("/login", controllers.AuthLogin(authService, logg))
	r.Post("/refresh", controllers.AuthRefresh(authService, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisStore, logg))

		r.Post("/logout", controllers.AuthLogout(authService, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(productService, logg))
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Get("/{productID}", controllers.GetProduct(productService, logg))
			r.Put("/{productID}", controllers.UpdateProduct(productService, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(productService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(orderService, logg))
			r.Post("/", controllers.CreateOrder(orderService, logg))
			r.Get("/{orderID}", controllers.GetOrder(orderService, logg))
			r.Put("/{orderID}/fulfilled", controllers.FulfillOrder(orderService, logg))
		})

		r.Get("/sales-trend", controllers.SalesTrend(analyticsService, logg))
		r.Get("/inventory", controllers.Inventory(analyticsService, logg))
		r.Get("/average-sales", controllers.AverageSales(analyticsService, logg))

		r.Route("/organizations/me", func(r chi.Router) {
			r.Get("/", controllers.GetMyOrganization(organizationService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Patch("/", controllers.RenameMyOrganization(organizationService, logg))
				r.Get("/users", controllers.ListOrganizationUsers(organizationService, logg))
				r.Post("/users", controllers.InviteOrganizationUser(organizationService, logg))
				r.Delete("/users/{userID}", controllers.DeactivateOrganizationUser(organizationService, logg))
			})
		})
	})

	return r
}
