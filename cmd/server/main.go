package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/configs"
	"github.com/emberwok/takeout/internal/application/services"
	"github.com/emberwok/takeout/internal/core/ports"
	"github.com/emberwok/takeout/internal/infrastructure/db"
	"github.com/emberwok/takeout/internal/infrastructure/health"
	"github.com/emberwok/takeout/internal/infrastructure/httpserver"
	"github.com/emberwok/takeout/internal/infrastructure/redis"
	"github.com/emberwok/takeout/internal/infrastructure/repositories"
	"github.com/emberwok/takeout/internal/infrastructure/scheduler"
)

func main() {
	// Load configuration
	cfg, err := configs.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting takeout backend...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// One cache client handle is constructed here and handed to every
	// component; nothing reaches for ambient global state.
	cache := redis.NewRedisCache(redisClient)
	locker := services.NewLockService(cache, logger)
	guard := services.NewMutationGuard(locker, &cfg.Lock, logger)

	// Base repositories and the caching decorator for dish reads
	baseDishRepo := repositories.NewDishRepository(database, logger)
	dishRepo := repositories.NewCachingDishRepository(baseDishRepo, cache, locker, &cfg.Cache, logger)
	orderRepo := repositories.NewOrderRepository(database, logger)
	cartRepo := repositories.NewCartRepository(database, logger)
	employeeRepo := repositories.NewEmployeeRepository(database, logger)

	// Services
	dishService := services.NewDishService(dishRepo, logger)
	orderService := services.NewOrderService(guard, orderRepo, cartRepo, logger)
	cartService := services.NewCartService(guard, cartRepo, dishRepo, logger)
	employeeService := services.NewEmployeeService(employeeRepo, logger)
	shopService := services.NewShopService(cache, logger)
	timeoutService := services.NewOrderTimeoutService(orderRepo, &cfg.Reconciler, logger)

	// Timeout sweeps run independently of request traffic
	sched := scheduler.New(logger)
	sched.Add(scheduler.Job{Name: "reap-unpaid-orders", Interval: cfg.Reconciler.UnpaidInterval, Run: timeoutService.ReapUnpaid})
	sched.Add(scheduler.Job{Name: "reap-stuck-deliveries", Interval: cfg.Reconciler.DeliveryInterval, Run: timeoutService.ReapUndelivered})

	schedCtx, stopSched := context.WithCancel(context.Background())
	sched.Start(schedCtx)

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)}

	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	deps := httpserver.ServerDeps{
		DishService:     dishService,
		OrderService:    orderService,
		CartService:     cartService,
		EmployeeService: employeeService,
		ShopService:     shopService,
		HealthCheckers:  hcSlice,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopSched()
	sched.Wait()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
