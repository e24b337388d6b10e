package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"order-service/cache"
	"order-service/controllers"
	"order-service/database"
	"order-service/kafka"
	"order-service/payments"
	"order-service/repository"
	"order-service/routes"
	"order-service/services"
	"order-service/storage"
)

const orderCacheTTL = 10 * time.Minute

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		logger.Fatal("MongoDB connection failed", zap.Error(err))
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn("MongoDB disconnect failed", zap.Error(err))
		}
	}()

	// --- Repositories ---
	orderRepo := repository.NewMongoOrderRepository(db)
	catalogRepo := repository.NewMongoCatalogRepository(db)
	cancellationRepo := repository.NewMongoCancellationRepository(db)
	returnRepo := repository.NewMongoReturnRepository(db)

	idxCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := orderRepo.EnsureIndexes(idxCtx); err != nil {
		logger.Fatal("Order index creation failed", zap.Error(err))
	}
	if err := cancellationRepo.EnsureIndexes(idxCtx); err != nil {
		logger.Fatal("Cancellation index creation failed", zap.Error(err))
	}

	// --- Optional infrastructure ---
	var blob services.BlobStorage
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewS3Client(context.Background(), cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			logger.Warn("S3 client init failed, return images disabled", zap.Error(err))
		} else {
			blob = s3Client
		}
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaOrderTopic, logger)
		defer producer.Close()
	}

	var orderCache *cache.OrderCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis ping failed, order caching disabled", zap.Error(err))
		} else {
			orderCache = cache.NewOrderCache(rdb, orderCacheTTL, logger)
		}
	}

	// --- Service wiring ---
	txnRunner := database.NewMongoTxnRunner(client)
	gateway := payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	ledger := services.NewStockLedger(catalogRepo, logger)
	orderService := services.NewOrderService(
		orderRepo, catalogRepo, ledger, gateway, txnRunner,
		producer, orderCache, logger,
		cfg.RazorpayKeySecret, cfg.Currency,
	)
	cancellationService := services.NewCancellationService(cancellationRepo, ledger, logger)
	returnService := services.NewReturnService(returnRepo, blob, logger)
	withdrawalService := services.NewWithdrawalService(
		orderRepo, cancellationService, returnService, txnRunner,
		producer, orderCache, logger,
	)

	orderCtrl := controllers.NewOrderController(orderService, logger)
	withdrawalCtrl := controllers.NewWithdrawalController(withdrawalService, logger)
	cancellationCtrl := controllers.NewCancellationController(cancellationService, logger)
	returnCtrl := controllers.NewReturnController(returnService, logger)

	// --- HTTP router ---
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	})

	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	routes.RegisterRoutes(r, orderCtrl, withdrawalCtrl, cancellationCtrl, returnCtrl)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		logger.Info("Order Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down Order Service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Order Service stopped gracefully")
}
