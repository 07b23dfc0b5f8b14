package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	checkoutapp "github.com/stocklane/inventory/application/checkout"
	inventoryapp "github.com/stocklane/inventory/application/inventory"
	reservationapp "github.com/stocklane/inventory/application/reservation"
	"github.com/stocklane/inventory/cmd/config"
	redisclient "github.com/stocklane/inventory/cmd/redis"
	_ "github.com/stocklane/inventory/docs"
	catalogRepo "github.com/stocklane/inventory/repository/catalog"
	historyRepo "github.com/stocklane/inventory/repository/history"
	redisRepo "github.com/stocklane/inventory/repository/redis"
	reservationRepo "github.com/stocklane/inventory/repository/reservation"
	stockRepo "github.com/stocklane/inventory/repository/stock"
	txRepo "github.com/stocklane/inventory/repository/tx"
	"github.com/stocklane/inventory/thirdparty/rabbitmq"
	"github.com/stocklane/inventory/transport"
	"github.com/stocklane/inventory/utils/logger"
	"go.uber.org/zap"
)

// @title INVENTORY API
// @version 1.0
// @description Inventory ledger and reservation API documentation
// @host localhost:8080
// @BasePath /
func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize global logger
	if err := logger.Init(cfg.Environment); err != nil {
		// fallback to standard log if zap init fails
		panic(err)
	}
	defer logger.Close()

	logger.Info("Starting server", zap.String("env", cfg.Environment))

	// Connect to database
	db, err := sqlx.Connect("mysql", cfg.GetDSN())
	if err != nil {
		logger.Fatal("err connect db", zap.Error(err))
	}

	// Initialize Redis client
	if err := redisclient.New(cfg); err != nil {
		logger.Fatal("err connect redis", zap.Error(err))
	}
	defer func() {
		_ = redisclient.Close()
	}()

	// Set database connection pool settings
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Connect to RabbitMQ for delayed expiration messages. The service still
	// works without it: the periodic sweep picks up lapsed holds.
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.User, cfg.RabbitMQ.Password)
	if err != nil {
		logger.Error("err connect rabbitmq publisher, expiration falls back to sweep", zap.Error(err))
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Initialize repositories
	TxRepo := txRepo.NewTxRepository(db)
	StockRepo := stockRepo.NewStockRepository(db)
	HistoryRepo := historyRepo.NewHistoryRepository(db)
	ReservationRepo := reservationRepo.NewReservationRepository(db)
	CatalogRepo := catalogRepo.NewCatalogRepository(db)
	RedisRepo := redisRepo.NewRepository()

	// Initialize application layers
	InventoryApp := inventoryapp.NewInventoryApp(cfg, TxRepo, StockRepo, HistoryRepo, ReservationRepo, CatalogRepo, RedisRepo)
	ReservationApp := reservationapp.NewReservationApp(cfg, TxRepo, StockRepo, ReservationRepo, CatalogRepo, RedisRepo, publisher)
	CheckoutApp := checkoutapp.NewCheckoutApp(TxRepo, StockRepo, CatalogRepo, RedisRepo, InventoryApp, ReservationApp)

	httpTransport := transport.NewTransport(InventoryApp, ReservationApp, CheckoutApp, cfg.Internal.APIKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the expiration consumer when the broker is reachable
	if publisher != nil {
		apiURL := fmt.Sprintf("http://localhost:%s", cfg.Server.Port)
		consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.User, cfg.RabbitMQ.Password, apiURL, cfg.Internal.APIKey)
		if err != nil {
			logger.Error("err connect rabbitmq consumer", zap.Error(err))
		} else {
			defer consumer.Close()
			if err := consumer.Start(ctx); err != nil {
				logger.Error("err start expiration consumer", zap.Error(err))
			}
		}
	}

	// Fallback sweep for holds whose expiration message was lost
	go runExpirySweep(ctx, ReservationApp, cfg.Inventory.SweepInterval)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpTransport,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("HTTP server running", zap.String("port", cfg.Server.Port))
	err = server.ListenAndServe()
	if err != nil {
		logger.Fatal("failed server", zap.Error(err))
	}
}

func runExpirySweep(ctx context.Context, app reservationapp.ReservationApp, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := app.SweepExpired(ctx)
			if err != nil {
				logger.Error("[runExpirySweep] sweep failed", zap.Error(err))
				continue
			}
			if swept > 0 {
				logger.Info("[runExpirySweep] expired reservations reclaimed", zap.Int("count", swept))
			}
		}
	}
}
