package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/localbasket/localbasket-backend/api/controllers"
	"github.com/localbasket/localbasket-backend/api/middleware"
	authsvc "github.com/localbasket/localbasket-backend/internal/auth"
	cartsvc "github.com/localbasket/localbasket-backend/internal/cart"
	complaintsvc "github.com/localbasket/localbasket-backend/internal/complaints"
	locationsvc "github.com/localbasket/localbasket-backend/internal/location"
	ordersvc "github.com/localbasket/localbasket-backend/internal/orders"
	productsvc "github.com/localbasket/localbasket-backend/internal/products"
	recsvc "github.com/localbasket/localbasket-backend/internal/recommendations"
	usersvc "github.com/localbasket/localbasket-backend/internal/users"
	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/db"
	"github.com/localbasket/localbasket-backend/pkg/enums"
	"github.com/localbasket/localbasket-backend/pkg/logger"
	"github.com/localbasket/localbasket-backend/pkg/metrics"
	"github.com/localbasket/localbasket-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth            authsvc.Service
	Products        productsvc.Service
	Location        locationsvc.Service
	Cart            cartsvc.Service
	Orders          ordersvc.Service
	Complaints      complaintsvc.Service
	Recommendations recsvc.Service
	Users           usersvc.Service
}

// NewRouter assembles the full HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
				Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
				Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		})

		// Public catalog and explicit-origin search.
		r.Get("/products", controllers.ProductsList(svcs.Products, logg))
		r.Get("/products/{id}", controllers.ProductGet(svcs.Products, logg))
		r.Post("/location/search", controllers.LocationSearch(svcs.Location, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/location", func(r chi.Router) {
				r.Get("/address", controllers.AddressGet(svcs.Location, logg))
				r.Post("/address", controllers.AddressUpsert(svcs.Location, logg))
				r.Get("/nearby", controllers.NearbyProducts(svcs.Location, logg))
				r.Get("/reverse", controllers.LocationReverse(svcs.Location, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartList(svcs.Cart, logg))
				r.Post("/", controllers.CartAddItem(svcs.Cart, logg))
				r.Patch("/items/{id}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{id}", controllers.CartRemoveItem(svcs.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrdersPlace(svcs.Orders, logg))
				r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			})

			r.Route("/complaints", func(r chi.Router) {
				r.Post("/", controllers.ComplaintsCreate(svcs.Complaints, logg))
				r.Get("/", controllers.ComplaintsList(svcs.Complaints, logg))
			})

			r.Get("/recommendations", controllers.RecommendationsGet(svcs.Recommendations, logg))
			r.Post("/interactions", controllers.InteractionsRecord(svcs.Recommendations, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

				r.Route("/products", func(r chi.Router) {
					r.Post("/", controllers.AdminCreateProduct(svcs.Products, logg))
					r.Post("/import", controllers.AdminImportProducts(svcs.Products, logg))
					r.Put("/{id}", controllers.AdminUpdateProduct(svcs.Products, logg))
					r.Delete("/{id}", controllers.AdminDeleteProduct(svcs.Products, logg))
					r.Patch("/{id}/collected", controllers.AdminMarkCollected(svcs.Products, logg))
				})

				r.Get("/complaints", controllers.AdminComplaintsList(svcs.Complaints, logg))
				r.Patch("/complaints/{id}", controllers.AdminComplaintRespond(svcs.Complaints, logg))
				r.Patch("/orders/{id}/status", controllers.AdminOrderUpdateStatus(svcs.Orders, logg))
			})

			r.Route("/superadmin", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleSuperAdmin, logg))

				r.Get("/users", controllers.SuperadminUsersList(svcs.Users, logg))
				r.Patch("/users/{id}/role", controllers.SuperadminUserUpdateRole(svcs.Users, logg))
			})
		})
	})

	return r
}
