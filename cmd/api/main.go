package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/core/cache"
	"storefront/internal/core/config"
	"storefront/internal/core/logger"
	"storefront/internal/core/messaging"
	"storefront/internal/core/metrics"
	"storefront/internal/core/server"
	"storefront/internal/core/storage"
	alertadapter "storefront/internal/features/alerts/adapters"
	alerthandler "storefront/internal/features/alerts/handler"
	alertservice "storefront/internal/features/alerts/service"
	cartadapter "storefront/internal/features/cart/adapters"
	carthandler "storefront/internal/features/cart/handler"
	cartservice "storefront/internal/features/cart/service"
	catalogadapter "storefront/internal/features/catalog/adapters"
	cataloghandler "storefront/internal/features/catalog/handler"
	catalogservice "storefront/internal/features/catalog/service"
	checkouthandler "storefront/internal/features/checkout/handler"
	checkoutservice "storefront/internal/features/checkout/service"
	filteradapter "storefront/internal/features/filters/adapters"
	filterhandler "storefront/internal/features/filters/handler"
	filterservice "storefront/internal/features/filters/service"
	orderadapter "storefront/internal/features/orders/adapters"
	orderhandler "storefront/internal/features/orders/handler"
	"storefront/internal/features/orders/ports"
	orderservice "storefront/internal/features/orders/service"
	paymentadapter "storefront/internal/features/payments/adapters"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// @title Storefront API
// @version 1.0
// @description Product catalog, session carts and filters, checkout and orders.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("order_store", cfg.Orders.Store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	sessionTTL := time.Duration(cfg.SessionTTL) * time.Second

	// Initialize Redis
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	checks := map[string]server.HealthCheck{
		"redis": redisCache.Ping,
	}

	// Initialize Catalog
	fakeStore := catalogadapter.NewFakeStoreAdapter(cfg.Catalog)
	if err := fakeStore.HealthCheck(ctx); err != nil {
		l.Warn("Catalog Health Check Failed, product lists will be empty until it recovers", zap.Error(err))
	}
	checks["catalog"] = fakeStore.HealthCheck

	catalogSvc := catalogservice.NewCatalogService(fakeStore, redisCache, catalogservice.Options{
		ProductsTTL:   time.Duration(cfg.Catalog.ProductsTTL) * time.Second,
		CategoriesTTL: time.Duration(cfg.Catalog.CategoriesTTL) * time.Second,
		Metrics:       m,
	})

	// Initialize Filters, Cart & Alerts
	filterSvc := filterservice.NewFilterService(filteradapter.NewRedisRepository(redisCache, sessionTTL))
	cartSvc := cartservice.NewCartService(cartadapter.NewRedisRepository(redisCache, sessionTTL), catalogSvc, m)
	alertSvc := alertservice.NewAlertService(alertadapter.NewRedisAlertRepository(redisCache, sessionTTL))

	// Initialize Orders
	orderRepo, closeRepo := newOrderRepository(ctx, cfg, redisCache, checks)
	defer closeRepo()

	events, closeEvents := newEventPublisher(cfg)
	defer closeEvents()

	// Initialize Payments, Orders & Checkout
	stripe := paymentadapter.NewStripeAdapter(cfg.Payment)
	orderSvc := orderservice.NewOrderService(orderRepo, events, stripe, m)
	checkoutSvc := checkoutservice.NewCheckoutService(orderSvc, stripe, checkoutservice.Options{
		BaseURL:  cfg.PublicBaseURL,
		Currency: cfg.Payment.Currency,
		Metrics:  m,
	})

	catalogHdl := cataloghandler.NewCatalogHandler(catalogSvc, filterSvc)
	filterHdl := filterhandler.NewFilterHandler(filterSvc, catalogSvc)
	cartHdl := carthandler.NewCartHandler(cartSvc)
	alertHdl := alerthandler.NewAlertHandler(alertSvc)
	checkoutHdl := checkouthandler.NewCheckoutHandler(checkoutSvc, cartSvc, alertSvc, m)
	orderHdl := orderhandler.NewOrderHandler(orderSvc, stripe)

	srv := server.New(cfg, server.Options{Metrics: m, Checks: checks})

	// Register Routes
	srv.App.Get("/products", catalogHdl.ListProducts)
	srv.App.Get("/products/price-range", catalogHdl.GetPriceRange)
	srv.App.Get("/products/:id", catalogHdl.GetProduct)
	srv.App.Get("/categories", catalogHdl.ListCategories)

	srv.App.Get("/filters", filterHdl.GetFilters)
	srv.App.Patch("/filters", filterHdl.UpdateFilters)
	srv.App.Delete("/filters", filterHdl.ResetFilters)

	srv.App.Get("/cart", cartHdl.GetCart)
	srv.App.Post("/cart/items", cartHdl.AddItem)
	srv.App.Delete("/cart/items/:productId", cartHdl.RemoveItem)
	srv.App.Delete("/cart", cartHdl.ClearCart)

	srv.App.Get("/alerts", alertHdl.GetAlert)
	srv.App.Delete("/alerts", alertHdl.DismissAlert)

	srv.App.Post("/checkout", checkoutHdl.Submit)

	srv.App.Get("/orders", orderHdl.ListOrders)
	srv.App.Get("/orders/confirm", orderHdl.Confirm)
	srv.App.Get("/orders/:id", orderHdl.GetOrder)
	srv.App.Post("/webhooks/payments", orderHdl.PaymentWebhook)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			l.Fatal("Server failed to start", zap.Error(err))
		}
	case <-ctx.Done():
		l.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Graceful shutdown failed", zap.Error(err))
		}
	}
}

// newOrderRepository builds the order store selected by ORDER_STORE.
func newOrderRepository(ctx context.Context, cfg *config.AppConfig, redisCache *cache.RedisAdapter, checks map[string]server.HealthCheck) (ports.OrderRepository, func()) {
	l := logger.Get()

	switch cfg.Orders.Store {
	case config.OrderStoreFile:
		l.Info("Using file order store", zap.String("path", cfg.Orders.File))
		return orderadapter.NewFileOrderRepository(cfg.Orders.File), func() {}

	case config.OrderStorePostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.Orders.DatabaseURL)
		if err != nil {
			l.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		repo := orderadapter.NewPostgresOrderRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			l.Fatal("Failed to migrate orders schema", zap.Error(err))
		}
		checks["postgres"] = pool.Ping
		l.Info("Using PostgreSQL order store")
		return repo, pool.Close

	default:
		l.Info("Using Redis order store")
		return orderadapter.NewRedisOrderRepository(redisCache), func() {}
	}
}

// newEventPublisher connects to RabbitMQ when configured and falls back to a logging no-op.
func newEventPublisher(cfg *config.AppConfig) (ports.EventPublisher, func()) {
	if cfg.Broker.URL == "" {
		logger.Get().Info("RABBITMQ_URL not set, order events are not published")
		return orderadapter.NoopEventPublisher{}, func() {}
	}

	broker, err := messaging.Dial(cfg.Broker.URL, cfg.Broker.Exchange)
	if err != nil {
		logger.Get().Fatal("Failed to initialize RabbitMQ", zap.Error(err))
	}

	return orderadapter.NewBrokerEventPublisher(broker), func() {
		if err := broker.Close(); err != nil {
			logger.Get().Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}
}
