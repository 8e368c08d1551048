package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vaporhouse/api/internal/handlers"
	"github.com/vaporhouse/api/internal/platform/auth"
	"github.com/vaporhouse/api/internal/platform/config"
	"github.com/vaporhouse/api/internal/platform/kvstore"
	"github.com/vaporhouse/api/internal/platform/observability"
	"github.com/vaporhouse/api/internal/repositories/rest"
	"github.com/vaporhouse/api/internal/services"
)

func main() {
	ctx := context.Background()

	// A local .env is optional; real deployments configure the environment directly.
	_ = godotenv.Load()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	storage, err := kvstore.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		logger.Fatal("failed to initialise storage", zap.Error(err))
	}

	productClient, err := rest.NewProductClient(rest.ClientConfig{
		BaseURL: cfg.CatalogAPI.BaseURL,
		Timeout: cfg.CatalogAPI.Timeout,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog client", zap.Error(err))
	}
	orderClient, err := rest.NewOrderClient(rest.ClientConfig{
		BaseURL: cfg.OrdersAPI.BaseURL,
		Timeout: cfg.OrdersAPI.Timeout,
	})
	if err != nil {
		logger.Fatal("failed to initialise order client", zap.Error(err))
	}

	var authenticator *auth.Authenticator
	if cfg.Auth.JWTSecret != "" {
		verifier, err := auth.NewJWTVerifier(auth.JWTVerifierConfig{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		})
		if err != nil {
			logger.Fatal("failed to initialise token verifier", zap.Error(err))
		}
		authenticator = auth.NewAuthenticator(verifier)
	} else {
		logger.Warn("no jwt secret configured; all requests are treated as guests")
	}

	resolver := services.NewSpecificationResolver()

	cartStore, err := services.NewCartStore(services.CartStoreDeps{
		Storage:  storage,
		Resolver: resolver,
		Clock:    time.Now,
		Logger:   observability.EventLogger(logger.Named("cart")),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart store", zap.Error(err))
	}
	favoritesStore, err := services.NewFavoritesStore(services.FavoritesStoreDeps{
		Storage: storage,
		Clock:   time.Now,
		Logger:  observability.EventLogger(logger.Named("favorites")),
	})
	if err != nil {
		logger.Fatal("failed to initialise favorites store", zap.Error(err))
	}

	// Hydrate before serving so the first request never races the load and a
	// startup mutation cannot clobber persisted state.
	if err := cartStore.Hydrate(ctx); err != nil {
		logger.Warn("cart hydration failed; starting empty", zap.Error(err))
	}
	if err := favoritesStore.Hydrate(ctx); err != nil {
		logger.Warn("favorites hydration failed; starting empty", zap.Error(err))
	}

	selector := services.NewFulfillmentSelector(services.FulfillmentSelectorDeps{
		DefaultBranch:  cfg.Fulfillment.DefaultBranch,
		BranchPriority: cfg.Fulfillment.BranchPriority,
	})
	assembler, err := services.NewOrderAssembler(services.OrderAssemblerDeps{
		Selector:          selector,
		Clock:             time.Now,
		InsideCity:        cfg.Delivery.InsideCity,
		InsideCityCharge:  cfg.Delivery.InsideCityCharge,
		OutsideCityCharge: cfg.Delivery.OutsideCityCharge,
	})
	if err != nil {
		logger.Fatal("failed to initialise order assembler", zap.Error(err))
	}
	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Cart:      cartStore,
		Assembler: assembler,
		Gateway:   orderClient,
		Logger:    observability.EventLogger(logger.Named("checkout")),
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	productHandlers := handlers.NewProductHandlers(productClient, resolver)
	cartHandlers := handlers.NewCartHandlers(cartStore, productClient)
	favoritesHandlers := handlers.NewFavoritesHandlers(favoritesStore, productClient)
	checkoutHandlers := handlers.NewCheckoutHandlers(authenticator, checkout)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.ReadinessCheck{Name: "cart", Ready: cartStore.Hydrated},
		handlers.ReadinessCheck{Name: "favorites", Ready: favoritesStore.Hydrated},
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.RecoveryMiddleware(logger.Named("http")),
	}
	if authenticator != nil {
		// Identity must be attached before request logging so user_id is present.
		middlewares = append(middlewares, authenticator.OptionalAuth())
	}
	middlewares = append(middlewares, observability.RequestLoggerMiddleware())

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithProductRoutes(productHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithFavoriteRoutes(favoritesHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("vaporhouse api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
