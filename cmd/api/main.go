package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/localbasket/localbasket-backend/api/routes"
	"github.com/localbasket/localbasket-backend/internal/auth"
	"github.com/localbasket/localbasket-backend/internal/cart"
	"github.com/localbasket/localbasket-backend/internal/complaints"
	"github.com/localbasket/localbasket-backend/internal/location"
	"github.com/localbasket/localbasket-backend/internal/orders"
	"github.com/localbasket/localbasket-backend/internal/products"
	"github.com/localbasket/localbasket-backend/internal/recommendations"
	"github.com/localbasket/localbasket-backend/internal/users"
	"github.com/localbasket/localbasket-backend/pkg/config"
	"github.com/localbasket/localbasket-backend/pkg/db"
	"github.com/localbasket/localbasket-backend/pkg/geocode"
	"github.com/localbasket/localbasket-backend/pkg/logger"
	"github.com/localbasket/localbasket-backend/pkg/metrics"
	"github.com/localbasket/localbasket-backend/pkg/migrate"
	"github.com/localbasket/localbasket-backend/pkg/pubsub"
	"github.com/localbasket/localbasket-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.New(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	geoMetrics := metrics.NewGeoMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	locationRepo := location.NewRepository(dbClient.DB(), dbClient.Driver())
	cartRepo := cart.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	complaintRepo := complaints.NewRepository(dbClient.DB())
	interactionRepo := recommendations.NewRepository(dbClient.DB())

	authService, err := auth.NewService(userRepo, cfg.JWT, cfg.Password, logg)
	requireService(logg, "auth", err)

	productService, err := products.NewService(productRepo, logg)
	requireService(logg, "products", err)

	geocoder := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithTimeout(cfg.Geocode.Timeout),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
	)

	locationService, err := location.NewService(locationRepo, redisClient, geocoder, cfg.Nearby, dbClient.Driver(), geoMetrics, logg)
	requireService(logg, "location", err)

	cartService, err := cart.NewService(cartRepo, productRepo)
	requireService(logg, "cart", err)

	orderService, err := orders.NewService(dbClient, orderRepo, cartRepo, pubsubClient, logg)
	requireService(logg, "orders", err)

	complaintService, err := complaints.NewService(complaintRepo, pubsubClient, logg)
	requireService(logg, "complaints", err)

	recommendationService, err := recommendations.NewService(
		interactionRepo,
		recommendations.NewClient(cfg.Recommendations),
		productRepo,
		cfg.Recommendations,
		logg,
	)
	requireService(logg, "recommendations", err)

	userService, err := users.NewService(userRepo, logg)
	requireService(logg, "users", err)

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, registry, httpMetrics, routes.Services{
		Auth:            authService,
		Products:        productService,
		Location:        locationService,
		Cart:            cartService,
		Orders:          orderService,
		Complaints:      complaintService,
		Recommendations: recommendationService,
		Users:           userService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
