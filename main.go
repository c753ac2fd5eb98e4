// Package main provides the main entry point for the rental pricing engine
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openrv/pricing-engine/app/handlers"
	"github.com/openrv/pricing-engine/app/router"
	"github.com/openrv/pricing-engine/app/services"
	businessflow "github.com/openrv/pricing-engine/business_flow"
	"github.com/openrv/pricing-engine/config"
	_ "github.com/openrv/pricing-engine/docs"
	"github.com/openrv/pricing-engine/pricing"
	"github.com/openrv/pricing-engine/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting rental pricing engine...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger to a rotating file when configured.
// Rotation keeps long-running deployments from filling the log volume.
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
		return
	}
	log.SetOutput(rotator)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// startMetricsServer exposes the Prometheus registry on a dedicated listener,
// away from the public API port. The returned function stops the server.
func startMetricsServer(cfg config.MetricsConfig) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Metrics server starting on :%d%s", cfg.Port, cfg.Path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down metrics server: %v", err)
		}
	}
}

// initializeCollaborators wires the master-data clients, layering the redis
// lookup cache on top when a cache client is available.
func initializeCollaborators(cfg *config.ProductionConfig, rc *redis.Client) (
	services.ModelCatalog,
	services.StoreDirectory,
	services.VehicleDirectory,
	services.CityDemandSource,
	services.HolidayCalendar,
	services.CustomRuleSource,
) {
	modelCatalog := services.NewModelCatalog(cfg.Collaborators)
	storeDirectory := services.NewStoreDirectory(cfg.Collaborators)
	vehicleDirectory := services.NewVehicleDirectory(cfg.Collaborators)
	cityDemand := services.NewCityDemandSource(cfg.Collaborators)
	holidays := services.NewHolidayCalendar(cfg.Collaborators)
	customRules := services.NewCustomRuleSource(cfg.Collaborators)

	if rc != nil {
		cache := services.NewLookupCache(rc, cfg.Cache.RedisPrefix, cfg.Cache.LookupTTL)
		modelCatalog = services.NewCachedModelCatalog(modelCatalog, cache)
		storeDirectory = services.NewCachedStoreDirectory(storeDirectory, cache)
		cityDemand = services.NewCachedCityDemandSource(cityDemand, cache)
		holidays = services.NewCachedHolidayCalendar(holidays, cache)
		log.Println("Collaborator lookup cache enabled")
	}

	return modelCatalog, storeDirectory, vehicleDirectory, cityDemand, holidays, customRules
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
		stopFuncs = append(stopFuncs, cancel)
	}

	if cfg.Metrics.Enabled {
		stopFuncs = append(stopFuncs, startMetricsServer(cfg.Metrics))
	}

	// Initialize repositories
	configRepo := repository.NewCalculationConfigRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)

	// Initialize collaborator clients
	modelCatalog, storeDirectory, vehicleDirectory, cityDemand, holidays, customRules := initializeCollaborators(cfg, rc)

	// Initialize flows
	configFlow := businessflow.NewCalculationConfigFlow(configRepo, db)

	// Seed the financial parameter rows before serving traffic
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer seedCancel()
	if err := configFlow.EnsureSeeded(seedCtx); err != nil {
		return nil, fmt.Errorf("failed to seed calculation configs: %w", err)
	}

	calculatorFlow := businessflow.NewCalculatorFlow(configRepo)

	calendarFlow := businessflow.NewCalendarFlow(
		configRepo,
		modelCatalog,
		storeDirectory,
		cityDemand,
		holidays,
		customRules,
		cfg,
	)

	adjustmentFlow := businessflow.NewAdjustmentFlow(
		configRepo,
		modelCatalog,
		cityDemand,
		holidays,
		customRules,
		historyRepo,
		db,
		cfg,
	)

	historyFlow := businessflow.NewPriceHistoryFlow(historyRepo)

	suggestionFlow := businessflow.NewSuggestionFlow(
		vehicleDirectory,
		modelCatalog,
		configRepo,
		historyRepo,
		pricing.DefaultRegistry,
		cfg,
	)

	// Initialize handlers
	calculatorHandler := handlers.NewCalculatorHandler(calculatorFlow)
	calendarHandler := handlers.NewCalendarHandler(calendarFlow)
	adjustmentHandler := handlers.NewAdjustmentHandler(adjustmentFlow)
	historyHandler := handlers.NewHistoryHandler(historyFlow)
	configHandler := handlers.NewConfigHandler(configFlow)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionFlow)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		calculatorHandler,
		calendarHandler,
		adjustmentHandler,
		historyHandler,
		configHandler,
		suggestionHandler,
	)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
