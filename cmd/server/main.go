package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rfandrade/creditledger/config"
	"github.com/rfandrade/creditledger/pkg/broker"
	"github.com/rfandrade/creditledger/pkg/cache"
	"github.com/rfandrade/creditledger/pkg/database/postgres"
	"github.com/rfandrade/creditledger/pkg/logger"

	backupH "github.com/rfandrade/creditledger/internal/backup/handler"
	backupRepoPkg "github.com/rfandrade/creditledger/internal/backup/repository"
	backupUCPkg "github.com/rfandrade/creditledger/internal/backup/usecase"

	custH "github.com/rfandrade/creditledger/internal/customer/handler"
	custRepoPkg "github.com/rfandrade/creditledger/internal/customer/repository"
	custUCPkg "github.com/rfandrade/creditledger/internal/customer/usecase"

	invH "github.com/rfandrade/creditledger/internal/inventory/handler"
	invRepoPkg "github.com/rfandrade/creditledger/internal/inventory/repository"
	invUCPkg "github.com/rfandrade/creditledger/internal/inventory/usecase"

	orderH "github.com/rfandrade/creditledger/internal/order/handler"
	orderListenerPkg "github.com/rfandrade/creditledger/internal/order/listener"
	orderRepoPkg "github.com/rfandrade/creditledger/internal/order/repository"
	orderUCPkg "github.com/rfandrade/creditledger/internal/order/usecase"

	prodH "github.com/rfandrade/creditledger/internal/product/handler"
	prodRepoPkg "github.com/rfandrade/creditledger/internal/product/repository"
	prodUCPkg "github.com/rfandrade/creditledger/internal/product/usecase"

	settingsPkg "github.com/rfandrade/creditledger/internal/settings"
	settingsH "github.com/rfandrade/creditledger/internal/settings/handler"
	settingsRepoPkg "github.com/rfandrade/creditledger/internal/settings/repository"

	statsPkg "github.com/rfandrade/creditledger/internal/stats"
	statsRepoPkg "github.com/rfandrade/creditledger/internal/stats/repository"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 6. Initialize Repositories
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	custRepo := custRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	statsRepo := statsRepoPkg.NewPGRepository(db)
	settingsRepo := settingsRepoPkg.NewPGRepository(db)
	backupRepo := backupRepoPkg.NewPGRepository(db)

	// 7. Initialize UseCases
	settingsSvc := settingsPkg.NewService(settingsRepo)
	statsSvc := statsPkg.NewService(statsRepo, settingsSvc, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, invRepo, appLogger)
	custUC := custUCPkg.NewCustomerUseCase(custRepo, orderRepo, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, invUC, prodRepo, custUC, statsSvc, settingsSvc, redisClient, appLogger)
	backupUC := backupUCPkg.NewBackupUseCase(backupRepo, appLogger)

	// 8. Start Listener and Late Sweep
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveryListener := orderListenerPkg.NewDeliveryListener(kafkaConsumer, orderUC, appLogger)
	go deliveryListener.Start(ctx)

	go func() {
		ticker := time.NewTicker(cfg.Ledger.LateSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := custUC.SweepLate(ctx); err != nil {
					appLogger.Error("Late sweep failed", zap.Error(err))
				}
			}
		}
	}()

	// 9. Initialize Handlers
	prodHandler := prodH.NewProductHandler(prodUC, appLogger)
	invHandler := invH.NewInventoryHandler(invUC, appLogger)
	custHandler := custH.NewCustomerHandler(custUC, appLogger)
	orderHandler := orderH.NewOrderHandler(orderUC, appLogger)
	settingsHandler := settingsH.NewSettingsHandler(settingsSvc, appLogger)
	backupHandler := backupH.NewBackupHandler(backupUC, appLogger)

	// 10. Router
	if cfg.Server.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("", prodHandler.Create)
			products.GET("", prodHandler.List)
			products.GET("/:id", prodHandler.Get)
			products.PUT("/:id", prodHandler.Update)
			products.DELETE("/:id", prodHandler.Deactivate)
		}

		inventoryGroup := v1.Group("/inventory")
		{
			inventoryGroup.GET("", invHandler.List)
			inventoryGroup.GET("/:productID", invHandler.GetByProduct)
			inventoryGroup.POST("/:productID/adjustments", invHandler.Adjust)
			inventoryGroup.GET("/:productID/adjustments", invHandler.ListAdjustments)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("", custHandler.Create)
			customers.GET("", custHandler.List)
			customers.GET("/:id", custHandler.Get)
			customers.PUT("/:id", custHandler.Update)
			customers.DELETE("/:id", custHandler.Deactivate)
			customers.GET("/:id/balance", custHandler.Balance)
			customers.GET("/:id/tags", custHandler.ListTags)
			customers.POST("/:id/tags", custHandler.AssignTag)
			customers.DELETE("/:id/tags/:tag", custHandler.RemoveTag)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", orderHandler.Create)
			orders.GET("", orderHandler.List)
			orders.POST("/quote", orderHandler.Quote)
			orders.GET("/:id", orderHandler.Get)
			orders.POST("/:id/payments", orderHandler.AddPayment)
			orders.POST("/:id/fulfillments", orderHandler.AddFulfillment)
			orders.POST("/:id/cancel", orderHandler.Cancel)
			orders.POST("/:id/close", orderHandler.Close)
		}

		settingsGroup := v1.Group("/settings")
		{
			settingsGroup.GET("", settingsHandler.Get)
			settingsGroup.PUT("", settingsHandler.Update)
		}

		backupGroup := v1.Group("/backup")
		{
			backupGroup.GET("/export", backupHandler.Export)
			backupGroup.POST("/import", backupHandler.Import)
		}
	}

	// 11. Start HTTP Server
	srv := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.Server.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
