package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"order-hub/internal/core/cache"
	"order-hub/internal/core/config"
	"order-hub/internal/core/database"
	"order-hub/internal/core/httpclient"
	"order-hub/internal/core/logger"
	"order-hub/internal/core/proxy"
	"order-hub/internal/core/server"
	catalogadapter "order-hub/internal/features/catalog/adapters"
	cataloghandler "order-hub/internal/features/catalog/handler"
	catalogservice "order-hub/internal/features/catalog/service"
	orderadapter "order-hub/internal/features/orders/adapters"
	orderhandler "order-hub/internal/features/orders/handler"
	orderservice "order-hub/internal/features/orders/service"
	shippingadapter "order-hub/internal/features/shipping/adapters"
	shippingdomain "order-hub/internal/features/shipping/domain"
	shippinghandler "order-hub/internal/features/shipping/handler"
	shippingservice "order-hub/internal/features/shipping/service"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// @title Order Hub API
// @version 1.0
// @description Order management with stock fulfillment and a unified facade over GHN, GHTK, Viettel Post and J&T Express.
// @contact.name API Support
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
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		l.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()

	models := append(catalogadapter.Models(), orderadapter.Models()...)
	if err := db.Migrate(ctx, models...); err != nil {
		l.Fatal("Database migration failed", zap.Error(err))
	}

	// Carrier facade
	client, err := httpclient.NewClient(cfg.Carriers.Timeout(), proxy.FromConfig(cfg.Proxy))
	if err != nil {
		l.Fatal("HTTP client setup failed", zap.Error(err))
	}
	executor := shippingadapter.NewHTTPExecutor(client, cfg.Carriers.RateLimitRPS)
	tracker := shippingadapter.NewAfterShipDelegate(executor, cfg.Carriers.AfterShipAPIKey, cfg.Carriers.AfterShipBaseURL)

	sender := shippingdomain.Sender{
		Name:     cfg.Sender.Name,
		Phone:    cfg.Sender.Phone,
		Address:  cfg.Sender.Address,
		Province: cfg.Sender.Province,
		District: cfg.Sender.District,
	}
	shippingSvc := shippingservice.NewShippingService(
		shippingadapter.NewCarriers(sender),
		connections(cfg.Carriers),
		executor,
		tracker,
	)

	if cfg.Redis.URL != "" {
		redisCache, err := cache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			l.Warn("Redis unavailable, carrier master data will not be cached", zap.Error(err))
		} else {
			defer redisCache.Close()
			shippingSvc.WithMasterDataCache(shippingadapter.NewRedisMasterDataCache(redisCache), cfg.Redis.MasterDataTTL())
			l.Info("Carrier master data cache enabled", zap.Duration("ttl", cfg.Redis.MasterDataTTL()))
		}
	}

	for _, info := range shippingSvc.Carriers() {
		l.Info("Carrier registered",
			zap.String("carrier", string(info.ID)),
			zap.Bool("api_connected", info.APIConnected),
			zap.Bool("native_tracking", info.NativeTracking),
		)
	}

	// Catalog & orders
	catalogSvc := catalogservice.NewCatalogService(catalogadapter.Repositories(db.DB), catalogadapter.NewGormTransactionScope(db.DB))
	orderSvc := orderservice.NewOrderService(orderadapter.Repositories(db.DB), orderadapter.NewGormTransactionScope(db.DB), shippingSvc)

	srv := server.New(cfg)

	// Register Routes
	shippinghandler.NewShippingHandler(shippingSvc).Register(srv.App)
	cataloghandler.NewCatalogHandler(catalogSvc).Register(srv.App)
	orderhandler.NewOrderHandler(orderSvc).Register(srv.App)

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

func connections(cfg config.CarriersConfig) map[shippingdomain.CarrierID]shippingdomain.Connection {
	return map[shippingdomain.CarrierID]shippingdomain.Connection{
		shippingdomain.CarrierGHN:         {APIKey: cfg.GHNAPIKey, BaseURL: cfg.GHNBaseURL},
		shippingdomain.CarrierGHTK:        {APIKey: cfg.GHTKAPIKey, BaseURL: cfg.GHTKBaseURL},
		shippingdomain.CarrierViettelPost: {APIKey: cfg.ViettelPostAPIKey, BaseURL: cfg.ViettelPostBaseURL},
		shippingdomain.CarrierJTExpress:   {APIKey: cfg.JTExpressAPIKey, BaseURL: cfg.JTExpressBaseURL},
	}
}
