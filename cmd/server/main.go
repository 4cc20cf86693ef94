package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appbilling "github.com/tiffin/backend/internal/application/billing"
	apppayment "github.com/tiffin/backend/internal/application/payment"
	"github.com/tiffin/backend/internal/infrastructure/config"
	"github.com/tiffin/backend/internal/infrastructure/lock"
	"github.com/tiffin/backend/internal/infrastructure/logger"
	"github.com/tiffin/backend/internal/infrastructure/persistence"
	"github.com/tiffin/backend/internal/interfaces/http/handler"
	"github.com/tiffin/backend/internal/interfaces/http/middleware"
	"github.com/tiffin/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Tiffin Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	gormLogLevel := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Customer locks serialize allocation work per customer. Redis backs
	// them when configured so multiple instances can share the lock space;
	// a single instance falls back to in-process mutexes.
	var locker apppayment.CustomerLocker
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		locker = lock.NewRedisCustomerLocker(client, cfg.Allocator.LockTTL, log)
		log.Info("Redis customer locks enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		locker = lock.NewMemoryCustomerLocker()
		log.Info("In-process customer locks enabled")
	}

	// Initialize repositories and transaction scopes
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	calendarRepo := persistence.NewGormCalendarEntryRepository(db.DB)
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)
	paymentScope := persistence.NewGormPaymentTransactionScope(db.DB)

	// Initialize application services
	billingService := appbilling.NewService(orderRepo, calendarRepo, billingScope, log)
	allocationService := apppayment.NewAllocationService(paymentScope, locker,
		apppayment.AllocatorConfig{AutoSelectLimit: cfg.Allocator.AutoSelectLimit}, log)
	creditService := apppayment.NewCreditService(paymentScope, log)
	refundService := apppayment.NewRefundService(paymentScope, locker, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom binding validations
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))

	// Health check endpoints outside API versioning, for load balancers
	engine.GET("/health", healthHandler(db, log))
	engine.GET("/ready", healthHandler(db, log))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewBillingHandler(billingService)).
		Register(handler.NewPaymentHandler(allocationService, creditService)).
		Register(handler.NewRefundHandler(refundService)).
		Register(handler.NewSystemHandler(cfg.App.Name, version, db)).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for the load-balancer health check
func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
